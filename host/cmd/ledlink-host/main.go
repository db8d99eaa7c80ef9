package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"ap1key/core"
	"ap1key/host/api"
	"ap1key/host/bench"
	"ap1key/host/config"
	"ap1key/protocol"
)

var (
	configFile = flag.String("config", "", "JSON config file")
	device     = flag.String("device", "", "Serial device of the LED MCU adapter")
	baud       = flag.Int("baud", 0, "Baud rate of the LED link")
	listen     = flag.String("http", "", "Serve the control API on this address, e.g. 127.0.0.1:8090")
	logfile    = flag.String("l", "", "Log into a file, rotating after 5MB")
	verbose    = flag.Bool("verbose", false, "Log link events")
)

const commandTimeout = 2 * time.Second

func main() {
	flag.Parse()

	var stderrWriter io.Writer
	if *logfile != "" {
		stderrWriter = &lumberjack.Logger{
			Filename:   *logfile,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
		}
	} else {
		stderrWriter = os.Stderr
	}
	logger := log.New(stderrWriter, "", log.LstdFlags)

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("config: %s", err)
	}

	core.SetDebugEnabled(*verbose)
	core.SetDebugWriter(func(s string) { logger.Print(s) })

	fmt.Printf("LED link host %s\n", protocol.Version)
	fmt.Printf("Opening LED link on %s at %d baud...\n", cfg.Device, cfg.Baud)

	rig, err := bench.Open(cfg, logger)
	if err != nil {
		logger.Fatalf("bench: %s", err)
	}
	defer rig.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- rig.Run(ctx)
	}()

	if cfg.HTTPListen != "" {
		s := api.New(cfg.HTTPListen, rig, stderrWriter)
		defer s.Close()
		go func() {
			logger.Printf("http: listening on %s", cfg.HTTPListen)
			if err := s.Run(); err != nil {
				logger.Printf("http: %s", err)
			}
		}()
	}

	prompt(rig, runErr)
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = config.LoadFile(*configFile); err != nil {
			return nil, err
		}
	}

	// Flags override the file
	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	if *listen != "" {
		cfg.HTTPListen = *listen
	}
	return cfg, cfg.Validate()
}

func prompt(rig *bench.Bench, runErr <-chan error) {
	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		}
		close(lines)
	}()

	for {
		fmt.Print("> ")

		var line string
		select {
		case err := <-runErr:
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: link stopped: %v\n", err)
				os.Exit(1)
			}
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if parts[0] == "quit" || parts[0] == "exit" || parts[0] == "q" {
			fmt.Println("Goodbye!")
			return
		}

		if err := runCommand(rig, parts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

func runCommand(rig *bench.Bench, parts []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch parts[0] {
	case "help", "?":
		printHelp()
		return nil
	case "status":
		printStatus(rig.Snapshot())
		return nil
	case "next-theme":
		return rig.NextTheme(ctx)
	case "next-brightness":
		return rig.NextBrightness(ctx)
	case "next-speed":
		return rig.NextAnimationSpeed(ctx)
	case "mode":
		return rig.ThemeMode(ctx)
	case "toggle":
		return rig.Toggle(ctx)
	case "theme-id":
		return rig.GetThemeID(ctx)
	case "theme":
		if len(parts) != 2 {
			return fmt.Errorf("usage: theme <index>")
		}
		index, err := strconv.ParseUint(parts[1], 10, 8)
		if err != nil {
			return fmt.Errorf("bad theme index %q", parts[1])
		}
		return rig.SetTheme(ctx, uint8(index))
	case "music":
		levels, err := parseLevels(parts[1:])
		if err != nil {
			return err
		}
		return rig.SendMusic(ctx, levels)
	case "bt-theme":
		return rig.PushBluetoothTheme(ctx)
	case "bt-pin":
		return rig.BluetoothPinMode(ctx)
	case "bt":
		status, err := parseBluetooth(rig.Status(), parts[1:])
		if err != nil {
			return err
		}
		rig.SetBluetoothStatus(status)
		return nil
	case "usb":
		if len(parts) != 2 || (parts[1] != "on" && parts[1] != "off") {
			return fmt.Errorf("usage: usb on|off")
		}
		rig.SetUSBReport(parts[1] == "on")
		return nil
	case "dump":
		core.DumpLinkRing()
		return nil
	}
	return fmt.Errorf("unknown command: %s (type 'help' for available commands)", parts[0])
}

func parseLevels(args []string) ([]byte, error) {
	if len(args) == 0 || len(args) > protocol.MaxPayload {
		return nil, fmt.Errorf("usage: music <level>... (1-%d levels)", protocol.MaxPayload)
	}
	levels := make([]byte, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("bad level %q", arg)
		}
		levels = append(levels, byte(v))
	}
	return levels, nil
}

// parseBluetooth applies saved=1,2 connected=2 mode=ble style arguments
func parseBluetooth(status core.BluetoothStatus, args []string) (core.BluetoothStatus, error) {
	bt := config.BluetoothConfig{
		ConnectedHost: int(status.ConnectedHost),
		Mode:          status.Mode.String(),
	}
	for slot := 1; slot <= core.MaxHostSlot; slot++ {
		if status.HasSavedHost(uint8(slot)) {
			bt.SavedHosts = append(bt.SavedHosts, slot)
		}
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return status, fmt.Errorf("bad argument %q, expected key=value", arg)
		}
		switch key {
		case "saved":
			bt.SavedHosts = nil
			if value == "" {
				continue
			}
			for _, s := range strings.Split(value, ",") {
				slot, err := strconv.Atoi(s)
				if err != nil {
					return status, fmt.Errorf("bad slot %q", s)
				}
				bt.SavedHosts = append(bt.SavedHosts, slot)
			}
		case "connected":
			slot, err := strconv.Atoi(value)
			if err != nil {
				return status, fmt.Errorf("bad slot %q", value)
			}
			bt.ConnectedHost = slot
		case "mode":
			bt.Mode = value
		default:
			return status, fmt.Errorf("unknown key %q", key)
		}
	}

	cfg := config.Config{Bluetooth: bt}
	return cfg.BluetoothStatus()
}

func printStatus(s bench.Status) {
	fmt.Println("\n=== LED link ===")
	fmt.Printf("Device: %s\n", s.Device)
	fmt.Printf("Busy: %v, awaiting %s\n", s.Busy, s.Stage)
	fmt.Printf("Faults: %d\n", s.Faults)
	fmt.Printf("Bluetooth: saved=%04b connected=%d mode=%s\n", s.Bluetooth.SavedHosts, s.Bluetooth.ConnectedHost, s.Mode)
	fmt.Printf("USB report: %v\n", s.USBReport)
	if len(s.Messages) > 0 {
		fmt.Printf("\nMessages (%d):\n", len(s.Messages))
		for _, m := range s.Messages {
			fmt.Printf("  %s\n", m)
		}
	}
	fmt.Println()
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help                   - Show this help message")
	fmt.Println("  status                 - Print link and simulated keyboard state")
	fmt.Println("  next-theme             - Cycle the LED theme")
	fmt.Println("  next-brightness        - Cycle the brightness")
	fmt.Println("  next-speed             - Cycle the animation speed")
	fmt.Println("  mode                   - Return to theme mode")
	fmt.Println("  toggle                 - Toggle between theme mode and dark")
	fmt.Println("  theme <index>          - Select a built-in theme")
	fmt.Println("  theme-id               - Ask for the current theme id")
	fmt.Println("  music <level>...       - Push music visualizer levels")
	fmt.Println("  bt-theme               - Push the Bluetooth layer colours")
	fmt.Println("  bt-pin                 - Light the PIN entry keys")
	fmt.Println("  bt saved=1,2 connected=2 mode=ble")
	fmt.Println("                         - Set the simulated Bluetooth state")
	fmt.Println("  usb on|off             - Set the simulated USB report flag")
	fmt.Println("  dump                   - Dump recent link events")
	fmt.Println("  quit/exit/q            - Exit the program")
	fmt.Println()
}
