package main

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	flags "github.com/jessevdk/go-flags"

	roomchat "github.com/shazow/room-chat"
	"github.com/shazow/room-chat/chat"
	"github.com/shazow/room-chat/log"
	"github.com/shazow/room-chat/transport"

	_ "net/http/pprof"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose         []bool        `short:"v" long:"verbose" description:"Show verbose logging."`
	Version         bool          `long:"version" description:"Print version and exit."`
	Bind            string        `long:"bind" description:"Host to listen on." default:"0.0.0.0"`
	Rooms           string        `long:"rooms" description:"Optional file of additional room names, one per line."`
	Log             string        `long:"log" description:"Write chat log to this file, - for stdout."`
	SSH             string        `long:"ssh" description:"Also serve over SSH on this host:port."`
	Identity        string        `short:"i" long:"identity" description:"Private key to identify the SSH server with." default:"~/.ssh/id_rsa"`
	Websocket       string        `long:"websocket" description:"Also serve websockets on this host:port."`
	WebsocketPath   string        `long:"websocket-path" description:"HTTP path for websocket upgrades." default:"/"`
	ShutdownTimeout time.Duration `long:"shutdown-timeout" description:"How long to wait for each room to stop." default:"2s"`
	Pprof           int           `long:"pprof" description:"Enable pprof http server for profiling."`

	Args struct {
		Port  uint16   `positional-arg-name:"PORT" description:"TCP port to listen on." required:"yes"`
		Rooms []string `positional-arg-name:"ROOM" description:"Chat rooms to serve."`
	} `positional-args:"yes"`
}

func fail(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

func main() {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	parser.Usage = "[OPTIONS] PORT ROOM..."
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	if options.Version {
		fmt.Println(Version)
		return
	}

	if options.Args.Port == 0 {
		fail(1, "invalid port: 0\n")
	}
	rooms := options.Args.Rooms
	err := fromFile(options.Rooms, func(line string) error {
		rooms = append(rooms, line)
		return nil
	})
	if err != nil {
		fail(1, "Failed to load rooms: %v\n", err)
	}
	if len(rooms) == 0 {
		fail(1, "At least one room is required.\n")
	}

	if options.Pprof != 0 {
		go func() {
			fmt.Println(http.ListenAndServe(fmt.Sprintf("localhost:%d", options.Pprof), nil))
		}()
	}

	logger := log.Init(len(options.Verbose))

	broker, err := chat.NewBroker(rooms...)
	if err != nil {
		fail(2, "Failed to create rooms: %v\n", err)
	}

	if options.Log == "-" {
		broker.SetLogging(os.Stdout)
	} else if options.Log != "" {
		fp, err := os.OpenFile(options.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fail(3, "Failed to open log file for writing: %v\n", err)
		}
		defer fp.Close()
		broker.SetLogging(fp)
	}

	listeners := []transport.Listener{}

	s, err := transport.ListenTCP(net.JoinHostPort(options.Bind, strconv.Itoa(int(options.Args.Port))))
	if err != nil {
		fail(4, "Failed to listen on socket: %v\n", err)
	}
	listeners = append(listeners, s)

	if options.SSH != "" {
		signer, err := ReadPrivateKey(options.Identity)
		if err != nil {
			fail(5, "Couldn't read private key: %v\n", err)
		}
		config := transport.MakeNoAuth()
		config.AddHostKey(signer)
		config.ServerVersion = "SSH-2.0-Go room-chat"

		s, err := transport.ListenSSH(options.SSH, config)
		if err != nil {
			fail(6, "Failed to listen for SSH: %v\n", err)
		}
		listeners = append(listeners, s)
	}

	if options.Websocket != "" {
		s, err := transport.ListenWebsocket(options.Websocket, options.WebsocketPath)
		if err != nil {
			fail(7, "Failed to listen for websockets: %v\n", err)
		}
		listeners = append(listeners, s)
	}

	host := roomchat.NewHost(broker)
	for _, l := range listeners {
		fmt.Printf("Listening for connections on %v\n", l.Addr().String())
		go host.Serve(l)
	}
	logger.Infof("Serving rooms: %s", strings.Join(rooms, ", "))

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Warningf("Failed to notify systemd: %v", err)
	} else if ok {
		logger.Debug("Notified systemd of readiness.")
	}

	// Construct interrupt handler
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	<-sig // Wait for ^C signal
	fmt.Fprintln(os.Stderr, "Interrupt signal detected, shutting down.")

	daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err := roomchat.Shutdown(broker, options.ShutdownTimeout, listeners...); err != nil {
		logger.Warningf("Shutdown: %v", err)
	}
}

// fromFile calls handler for every non-blank line of path that isn't a
// # comment. An empty path is skipped.
func fromFile(path string, handler func(line string) error) error {
	if path == "" {
		// Skip
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		err := handler(line)
		if err != nil {
			return err
		}
	}
	return scanner.Err()
}
