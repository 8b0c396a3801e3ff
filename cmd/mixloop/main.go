package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	ml "github.com/cellux/mixloop"
	"github.com/cellux/mixloop/samples"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

var logger = slog.Default()

type options struct {
	configPath string
	logLevel   string
	cfg        ml.Config
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "mixloop",
		Short:        "Live looping synthesizer",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ml.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = opts.logLevel
			}
			l, err := ml.InitLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			logger = l
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+ml.DefaultConfigPath+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	root.AddCommand(newListPortsCommand(), newPlayCommand(opts), newRenderCommand(opts))
	return root
}

func newListPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-ports",
		Short: "List MIDI inputs and serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ins, err := listMidiInputs()
			if err != nil {
				logger.Warn("cannot list MIDI inputs", "err", err)
			}
			fmt.Fprintln(out, "MIDI inputs:")
			for i, name := range ins {
				fmt.Fprintf(out, "  %d: %s\n", i, name)
			}
			ports, err := listSerialPorts()
			if err != nil {
				logger.Warn("cannot list serial ports", "err", err)
			}
			fmt.Fprintln(out, "Serial ports:")
			for _, name := range ports {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}

func loadSample(path string, sampleRate int) (*ml.Tape, error) {
	if path == "" {
		return nil, nil
	}
	tape, err := samples.Load(path, float64(sampleRate))
	if err != nil {
		return nil, err
	}
	samples.Normalize(tape, 0.9)
	logger.Info("sample loaded", "path", path, "seconds", tape.DurationS())
	return tape, nil
}

func newPlayCommand(opts *options) *cobra.Command {
	var patch, samplePath string
	var gain, pan float64
	var midiPort, serialBaud int
	var serialPort string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a patch live through the audio device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			flags := cmd.Flags()
			if flags.Changed("gain") {
				cfg.Gain = gain
			}
			if flags.Changed("pan") {
				cfg.Pan = pan
			}
			if flags.Changed("midi-port") {
				cfg.MidiPort = midiPort
			}
			if flags.Changed("serial-port") {
				cfg.SerialPort = serialPort
			}
			if flags.Changed("serial-baud") {
				cfg.SerialBaud = serialBaud
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return play(cmd.Context(), cfg, patch, samplePath)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&patch, "patch", "keys", "patch: "+strings.Join(patchNames, "|"))
	flags.StringVar(&samplePath, "sample", "", "WAV or MP3 file played by the drums patch")
	flags.Float64Var(&gain, "gain", 0, "output gain")
	flags.Float64Var(&pan, "pan", 0, "stereo position -1..1")
	flags.IntVar(&midiPort, "midi-port", -1, "MIDI input port number")
	flags.StringVar(&serialPort, "serial-port", "", "serial device carrying raw MIDI")
	flags.IntVar(&serialBaud, "serial-baud", 0, "serial baud rate")
	return cmd
}

func play(ctx context.Context, cfg ml.Config, patch, samplePath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sample, err := loadSample(samplePath, cfg.SampleRate)
	if err != nil {
		return err
	}
	env := patchEnv{input: ml.NewInput(), midi: ml.NewMidiPlayer(), sample: sample}
	root, err := buildPatch(patch, env)
	if err != nil {
		return err
	}
	player, err := ml.NewPlayer(root, cfg.PlayerConfig())
	if err != nil {
		return err
	}

	if patch == "midi" {
		if cfg.MidiPort < 0 && cfg.SerialPort == "" {
			return fmt.Errorf("%w: the midi patch needs --midi-port or --serial-port", ml.ErrInvalidConfig)
		}
		if cfg.MidiPort >= 0 {
			closeMidi, err := openMidiInput(cfg.MidiPort, env.midi)
			if err != nil {
				return err
			}
			defer closeMidi()
		}
		if cfg.SerialPort != "" {
			serialErr := make(chan error, 1)
			go func() { serialErr <- runSerialMidi(ctx, cfg.SerialPort, cfg.SerialBaud, env.midi) }()
			defer func() {
				stop()
				if err := <-serialErr; err != nil {
					logger.Error("serial MIDI stopped", "err", err)
				}
			}()
		}
	}

	otoCtx, err := newOtoContext(cfg)
	if err != nil {
		return err
	}
	stopPlayback, err := startPlayback(otoCtx, player)
	if err != nil {
		return err
	}
	defer stopPlayback()
	logger.Info("playing", "patch", patch, "sampleRate", cfg.SampleRate, "channels", cfg.Channels)

	if patch == "midi" {
		<-ctx.Done()
		return nil
	}
	return runWindow(ctx, "mixloop : "+patch, env.input)
}

func newRenderCommand(opts *options) *cobra.Command {
	var patch, out, samplePath string
	var seconds float64
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a self-playing patch to a WAV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seconds <= 0 {
				return fmt.Errorf("%w: --seconds must be positive", ml.ErrInvalidConfig)
			}
			if out == "" {
				return errors.New("--out is required")
			}
			return render(opts.cfg, patch, samplePath, seconds, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&patch, "patch", "demo", "patch to render")
	flags.StringVar(&out, "out", "", "output WAV file")
	flags.StringVar(&samplePath, "sample", "", "WAV or MP3 file mixed into the demo")
	flags.Float64Var(&seconds, "seconds", 16, "length of the render")
	return cmd
}

func render(cfg ml.Config, patch, samplePath string, seconds float64, out string) error {
	sample, err := loadSample(samplePath, cfg.SampleRate)
	if err != nil {
		return err
	}
	// live patches render silence without input, which is still valid
	env := patchEnv{input: ml.NewInput(), midi: ml.NewMidiPlayer(), sample: sample}
	root, err := buildPatch(patch, env)
	if err != nil {
		return err
	}
	player, err := ml.NewPlayer(root, cfg.PlayerConfig())
	if err != nil {
		return err
	}
	path, err := homedir.Expand(out)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	frames := int(player.Ctx().SecondsToTicks(seconds))
	if err := player.RenderWAV(f, frames); err != nil {
		f.Close()
		return err
	}
	logger.Info("wrote", "path", path)
	return f.Close()
}
