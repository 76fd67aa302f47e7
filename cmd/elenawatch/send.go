package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sab1e-dev/ElenaWatchDevTools/logger"
	"github.com/Sab1e-dev/ElenaWatchDevTools/serialport"
	"github.com/Sab1e-dev/ElenaWatchDevTools/ymodem"
)

var sendFlags struct {
	Port    string
	File    string
	Baud    int
	Timeout time.Duration
}

// sendCmd pushes a single file to the device via YMODEM.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a file to the device via YMODEM",
	Long: `Send a file to the device over the given serial port.

The device must be running a YMODEM receiver in CRC-16 mode (the standard
"rb" / firmware-update receiver). The transfer is lockstep and aborts on the
first missed acknowledgment.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if sendFlags.Port == "" {
			return fmt.Errorf("serial port is required")
		}
		if sendFlags.File == "" {
			return fmt.Errorf("file path is required")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend()
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendFlags.Port, "port", "p", "", "serial port of the device (required)")
	sendCmd.Flags().StringVarP(&sendFlags.File, "file", "f", "", "path of the file to send (required)")
	sendCmd.Flags().IntVar(&sendFlags.Baud, "baud", 0, "serial baud rate (default from config, 115200)")
	sendCmd.Flags().DurationVar(&sendFlags.Timeout, "timeout", 0, "control-byte response timeout (default from config, 10s)")

	_ = sendCmd.MarkFlagRequired("port")
	_ = sendCmd.MarkFlagRequired("file")

	_ = viper.BindPFlag("send.port", sendCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("send.file", sendCmd.Flags().Lookup("file"))
}

func runSend() error {
	data, err := os.ReadFile(sendFlags.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", sendFlags.File, err)
	}
	filename := filepath.Base(sendFlags.File)

	cfg := serialport.DefaultConfig()
	cfg.BaudRate = sendFlags.Baud
	if cfg.BaudRate == 0 {
		cfg.BaudRate = viper.GetInt("baud")
	}

	timeout := sendFlags.Timeout
	if timeout == 0 {
		timeout = viper.GetDuration("timeout")
	}

	port, err := serialport.Open(sendFlags.Port, cfg)
	if err != nil {
		return err
	}

	log := logger.GetLogger()
	transport := ymodem.NewStreamTransport(port, log)
	defer func() { _ = transport.Close() }()

	sender, err := ymodem.NewSender(transport,
		ymodem.WithResponseTimeout(timeout),
		ymodem.WithLogger(log),
	)
	if err != nil {
		return err
	}

	bar := newSendProgressBar(filename, len(data))

	result, err := sender.Transfer(context.Background(), filename, data, func(sent, total int) {
		_ = bar.Set(sent)
	})
	if err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}

	_ = bar.Finish()
	fmt.Printf("\nSent %s: %d bytes\n", result.Filename, result.WrittenBytes)

	return nil
}

// newSendProgressBar builds a progress bar over the packet count of the
// transfer.
func newSendProgressBar(filename string, totalBytes int) *progressbar.ProgressBar {
	totalPackets := (totalBytes + ymodem.LongPayloadSize - 1) / ymodem.LongPayloadSize
	if totalPackets == 0 {
		totalPackets = 1
	}

	return progressbar.NewOptions(totalPackets,
		progressbar.OptionSetDescription(fmt.Sprintf("Sending %s", filename)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
}
