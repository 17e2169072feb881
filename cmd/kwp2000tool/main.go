package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kjdev/kwp2000tool/pkg/config"
	"github.com/kjdev/kwp2000tool/pkg/kline"
	"github.com/kjdev/kwp2000tool/pkg/kwp"
	"github.com/kjdev/kwp2000tool/pkg/serial"
	log "github.com/sirupsen/logrus"
)

var defaultPort = "/dev/ttyUSB0"
var defaultInitAddress byte = 0x01

func main() {
	log.SetLevel(log.InfoLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	port := flag.String("port", defaultPort, "serial device")
	debug := flag.Bool("debug", false, "enable debug logging")
	sectorFile := flag.String("sectors", "", "sector map INI file")

	cmd := os.Args[1]
	flag.CommandLine.Parse(os.Args[2:])

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	channel, err := serial.Open(*port, 2*time.Second)
	if err != nil {
		fmt.Printf("error opening %s: %v\n", *port, err)
		os.Exit(1)
	}
	defer channel.Close()

	if err := kline.Init(channel, defaultInitAddress, log.StandardLogger()); err != nil {
		fmt.Printf("link initialisation failed: %v\n", err)
		os.Exit(1)
	}

	client := kwp.NewClient(channel, log.StandardLogger())
	if err := client.ProgrammingMode(nil); err != nil {
		fmt.Printf("switching to programming mode: %v\n", err)
		os.Exit(1)
	}
	if err := client.GetSecurityAccess(); err != nil {
		log.WithError(err).Warn("security access denied, attempting lockout bypass")
		if err := client.SecurityAccessLockoutBypass(); err != nil {
			fmt.Printf("security access failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := client.UseFastestTiming(); err != nil {
		log.WithError(err).Warn("could not negotiate faster timing, continuing at default")
	}

	switch cmd {
	case "init", "security":
		// the handshake and security access above already ran; nothing
		// further to do for these two commands.

	case "read":
		if flag.NArg() < 1 {
			fmt.Println("usage: kwp2000tool read -sectors <file> <sector>")
			os.Exit(1)
		}
		sectors := loadSectors(*sectorFile)
		sector, ok := sectors.Find(flag.Arg(0))
		if !ok {
			fmt.Printf("unknown sector %q\n", flag.Arg(0))
			os.Exit(1)
		}
		data, err := client.Upload(sector.Start, sector.Length)
		if err != nil {
			fmt.Printf("reading sector %q: %v\n", sector.Name, err)
			os.Exit(1)
		}
		if err := os.WriteFile(flag.Arg(0)+".bin", data, 0o644); err != nil {
			fmt.Printf("writing output: %v\n", err)
			os.Exit(1)
		}

	case "flash":
		if flag.NArg() < 2 {
			fmt.Println("usage: kwp2000tool flash -sectors <file> <sector> <image>")
			os.Exit(1)
		}
		sectors := loadSectors(*sectorFile)
		sector, ok := sectors.Find(flag.Arg(0))
		if !ok {
			fmt.Printf("unknown sector %q\n", flag.Arg(0))
			os.Exit(1)
		}
		data, err := os.ReadFile(flag.Arg(1))
		if err != nil {
			fmt.Printf("reading image: %v\n", err)
			os.Exit(1)
		}
		if err := client.Download(sector.Start, data); err != nil {
			fmt.Printf("flashing sector %q: %v\n", sector.Name, err)
			os.Exit(1)
		}

	default:
		usage()
		os.Exit(1)
	}

	if err := client.Disconnect(); err != nil {
		log.WithError(err).Warn("disconnect")
	}
}

func loadSectors(path string) config.SectorMap {
	if path == "" {
		fmt.Println("missing -sectors <file>")
		os.Exit(1)
	}
	sectors, err := config.LoadSectorMap(path)
	if err != nil {
		fmt.Printf("loading sector map: %v\n", err)
		os.Exit(1)
	}
	return sectors
}

func usage() {
	fmt.Println("usage: kwp2000tool <init|security|read|flash> [-port dev] [-debug] [-sectors file] [args]")
}
