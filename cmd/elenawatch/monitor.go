package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sab1e-dev/ElenaWatchDevTools/logger"
	"github.com/Sab1e-dev/ElenaWatchDevTools/serialport"
	"github.com/Sab1e-dev/ElenaWatchDevTools/ymodem"
)

var monitorFlags struct {
	Port string
	Baud int
}

// monitorCmd streams raw device output to stdout until interrupted.
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream raw device output to stdout",
	Long: `Monitor prints everything the device writes to the serial port.

Press Ctrl-C to stop.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if monitorFlags.Port == "" {
			return fmt.Errorf("serial port is required")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor()
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringVarP(&monitorFlags.Port, "port", "p", "", "serial port of the device (required)")
	monitorCmd.Flags().IntVar(&monitorFlags.Baud, "baud", 0, "serial baud rate (default from config, 115200)")

	_ = monitorCmd.MarkFlagRequired("port")
}

func runMonitor() error {
	cfg := serialport.DefaultConfig()
	cfg.BaudRate = monitorFlags.Baud
	if cfg.BaudRate == 0 {
		cfg.BaudRate = viper.GetInt("baud")
	}

	port, err := serialport.Open(monitorFlags.Port, cfg)
	if err != nil {
		return err
	}

	transport := ymodem.NewStreamTransport(port, logger.GetLogger())
	defer func() { _ = transport.Close() }()

	cancel := transport.Subscribe(func(chunk []byte) {
		_, _ = os.Stdout.Write(chunk)
	})
	defer cancel()

	fmt.Fprintf(os.Stderr, "Monitoring %s at %d baud, Ctrl-C to stop.\n", monitorFlags.Port, cfg.BaudRate)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	return nil
}
