// elenawatch is the host-side command line tool for ElenaWatch devices.
//
// It transfers files to a device over a serial link using the YMODEM
// protocol, lists the serial ports present on the system, and can monitor
// raw device output.
package main

func main() {
	Execute()
}
