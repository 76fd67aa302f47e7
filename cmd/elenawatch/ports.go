package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sab1e-dev/ElenaWatchDevTools/serialport"
)

// portsCmd lists the serial ports present on the system.
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serialport.List()
		if err != nil {
			return err
		}

		if len(ports) == 0 {
			fmt.Println("No serial ports found.")
			return nil
		}

		for _, port := range ports {
			fmt.Println(port)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
