// pktline encodes and decodes pkt-line streams on stdin/stdout.
//
//	pktline [flags] encode        stdin bytes -> data packets + flush
//	pktline [flags] decode        packets up to flush -> raw payload bytes
//	pktline [flags] lines         packets up to flush -> one line each
//	pktline [flags] write ARG...  each ARG as a "ARG\n" packet, then flush
//	pktline init-config PATH      write a default config file
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/pktline/internal/config"
	"github.com/danmuck/pktline/internal/logging"
	"github.com/danmuck/pktline/internal/observability"
	"github.com/danmuck/pktline/internal/pktline"
	"github.com/danmuck/pktline/internal/trace"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage: pktline [flags] encode|decode|lines|write ARG...|init-config PATH")

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "pktline: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var (
		configPath string
		identity   string
		packet     string
		packfile   string
		logLevel   string
		textfile   string
		digest     bool
		force      bool
	)

	flagSet := pflag.NewFlagSet("pktline", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a TOML config file")
	flagSet.StringVar(&identity, "identity", "", "label printed in packet trace lines")
	flagSet.StringVar(&packet, "trace-packet", "", "human packet trace target (1, 2, fd, absolute path, log)")
	flagSet.StringVar(&packfile, "trace-packfile", "", "pack data trace target (absolute path, .zst compresses)")
	flagSet.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")
	flagSet.StringVar(&textfile, "metrics-textfile", "", "write prometheus metrics to this .prom file on exit")
	flagSet.BoolVar(&digest, "digest", false, "report a BLAKE3 digest of traced pack data")
	flagSet.BoolVar(&force, "force", false, "overwrite an existing file with init-config")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintln(stdout, errUsage.Error())
		flagSet.SetOutput(stdout)
		flagSet.PrintDefaults()
		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		return errUsage
	}

	if rest[0] == "init-config" {
		if len(rest) != 2 {
			return errUsage
		}
		return config.WriteTemplate(rest[1], force)
	}

	profile := baseProfile()
	if configPath != "" {
		var err error
		if profile, err = loadProfile(configPath, profile); err != nil {
			return err
		}
	}
	if flagSet.Changed("identity") {
		profile.Trace.Identity = identity
	}
	if flagSet.Changed("trace-packet") {
		profile.Trace.Packet = packet
	}
	if flagSet.Changed("trace-packfile") {
		profile.Trace.Packfile = packfile
	}
	if flagSet.Changed("digest") {
		profile.Trace.Digest = digest
	}
	if flagSet.Changed("log-level") {
		profile.Log.Level = logLevel
	}
	if flagSet.Changed("metrics-textfile") {
		profile.Metrics.Textfile = textfile
	}
	if err := config.Validate(profile); err != nil {
		return err
	}
	logging.SetLevel(profile.Log.Level)

	sinks, err := trace.Open(profile.TraceConfig())
	if err != nil {
		return err
	}
	defer sinks.Close()

	opts := []pktline.Option{
		pktline.WithTrace(sinks.NewSession()),
		pktline.WithStream(profile.Trace.Identity),
	}

	if err := dispatch(rest[0], rest[1:], stdin, stdout, opts); err != nil {
		return err
	}

	if sinks.Digest != nil {
		log.Info().
			Str("digest", sinks.Digest.Hex()).
			Int64("bytes", sinks.Digest.Count()).
			Msg("pack data digest")
	}
	if profile.Metrics.Textfile != "" {
		if err := observability.WriteTextfile(profile.Metrics.Textfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func dispatch(cmd string, args []string, stdin io.Reader, stdout io.Writer, opts []pktline.Option) error {
	switch cmd {
	case "encode":
		n, err := pktline.NewWriter(stdout, opts...).StreamFrom(stdin)
		if err != nil {
			return err
		}
		log.Debug().Int64("bytes", n).Msg("encoded stream")
		return nil

	case "decode":
		var out bytes.Buffer
		n, err := pktline.NewReader(stdin, opts...).ReadUntilFlush(&out)
		if err != nil {
			return err
		}
		log.Debug().Int64("bytes", n).Msg("decoded stream")
		_, err = stdout.Write(out.Bytes())
		return err

	case "lines":
		r := pktline.NewReader(stdin, opts...)
		for {
			line, err := r.ReadLine()
			if err != nil {
				return err
			}
			if line == nil {
				return nil
			}
			if _, err := fmt.Fprintf(stdout, "%s\n", line); err != nil {
				return err
			}
		}

	case "write":
		w := pktline.NewWriter(stdout, opts...)
		for _, arg := range args {
			if err := w.WriteFmt("%s\n", arg); err != nil {
				return err
			}
		}
		return w.Flush()
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}
