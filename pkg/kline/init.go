package kline

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	idleDuration    = 300 * time.Millisecond
	startBitTime    = 200 * time.Millisecond
	bitTime         = 200 * time.Millisecond
	keyByteDelay    = 25 * time.Millisecond
	syncByte        = 0x55
	fixedSecondKey  = 0x8F
)

// Init performs the 5-baud wake-up and key-byte handshake against initAddress
// on channel. On success the channel is left open at its current baud rate,
// ready for framed messaging. logger may be nil, in which case
// logrus.StandardLogger() is used.
func Init(channel Channel, initAddress byte, logger *log.Logger) error {
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger.WithField("address", fmt.Sprintf("0x%02X", initAddress)).Info("starting 5-baud wake-up")

	if err := channel.SetBreakLow(); err != nil {
		return err
	}
	channel.Sleep(idleDuration)

	if err := channel.SetBreakHigh(); err != nil {
		return err
	}
	channel.Sleep(startBitTime)

	for i := 0; i < 8; i++ {
		bit := (initAddress >> uint(i)) & 1
		if bit == 1 {
			if err := channel.SetBreakHigh(); err != nil {
				return err
			}
		} else {
			if err := channel.SetBreakLow(); err != nil {
				return err
			}
		}
		channel.Sleep(bitTime)
	}

	if err := channel.SetBreakLow(); err != nil {
		return err
	}

	for {
		sync, err := channel.ReadExact(1)
		if err != nil {
			return fmt.Errorf("kline: waiting for sync byte: %w", err)
		}
		if sync[0] == syncByte {
			break
		}
		logger.WithField("got", fmt.Sprintf("0x%02X", sync[0])).Debug("discarding byte before sync")
	}

	key, err := channel.ReadExact(1)
	if err != nil {
		return fmt.Errorf("kline: waiting for key byte: %w", err)
	}
	logger.WithField("key", fmt.Sprintf("0x%02X", key[0])).Debug("received key byte")

	channel.Sleep(keyByteDelay)

	if err := channel.WriteAll([]byte{0xFF ^ fixedSecondKey}); err != nil {
		return fmt.Errorf("kline: sending key complement: %w", err)
	}

	confirm, err := channel.ReadExact(1)
	if err != nil {
		return fmt.Errorf("kline: waiting for address confirmation: %w", err)
	}
	want := 0xFF ^ initAddress
	if confirm[0] != want {
		return fmt.Errorf("kline: address confirmation mismatch: got 0x%02X want 0x%02X", confirm[0], want)
	}

	logger.Info("5-baud wake-up complete")
	return nil
}
