// Command synthctl is the developer-facing CLI over a project file: load/
// validate it, render it offline to WAV, play it through the realtime
// backend, or dump the closed node-kind schema registry for an external
// editor to self-configure against.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cbegin/synthgraph"
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	root := &cobra.Command{
		Use:   "synthctl",
		Short: "Inspect, render, and play synthgraph project files",
	}
	root.AddCommand(validateCmd(), renderCmd(), batchRenderCmd(), playCmd(), schemaCmd())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("synthctl failed")
	}
}

func loadProject(path string) (*graph.Project, map[nodes.Kind]*nodes.Schema, error) {
	reg := nodes.Schemas()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, reg, err
	}
	p, err := graph.Deserialize(data, reg)
	return p, reg, err
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.ncft>",
		Short: "Load, normalize, and validate a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			log.Info().Str("file", args[0]).Msg("project is valid")
			return nil
		},
	}
}

func renderCmd() *cobra.Command {
	var seconds float64
	var sampleRate int
	cmd := &cobra.Command{
		Use:   "render <file.ncft> <out.wav>",
		Short: "Compile a project and render it offline to a WAV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, reg, err := loadProject(args[0])
			if err != nil {
				return err
			}
			samples, err := synthgraph.RenderSamples(p, reg, sampleRate, seconds)
			if err != nil {
				return err
			}
			wav, err := synthgraph.EncodeWAV(samples, sampleRate)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], wav, 0o644); err != nil {
				return err
			}
			log.Info().Str("out", args[1]).Float64("seconds", seconds).Msg("rendered")
			return nil
		},
	}
	cmd.Flags().Float64Var(&seconds, "seconds", 5.0, "duration to render")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 48000, "output sample rate")
	return cmd
}

// batchRenderCmd renders several project files concurrently. Grounded on
// the teacher's indirect errgroup.v0.17.0 dependency closure (the teacher
// never wires it directly; this is its first real use here).
func batchRenderCmd() *cobra.Command {
	var seconds float64
	var sampleRate int
	cmd := &cobra.Command{
		Use:   "batch-render <out-dir> <file.ncft>...",
		Short: "Render several project files concurrently into out-dir",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, files := args[0], args[1:]
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			var g errgroup.Group
			for _, file := range files {
				file := file
				g.Go(func() error {
					p, reg, err := loadProject(file)
					if err != nil {
						return err
					}
					samples, err := synthgraph.RenderSamples(p, reg, sampleRate, seconds)
					if err != nil {
						return err
					}
					wav, err := synthgraph.EncodeWAV(samples, sampleRate)
					if err != nil {
						return err
					}
					base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
					out := filepath.Join(outDir, base+".wav")
					if err := os.WriteFile(out, wav, 0o644); err != nil {
						return err
					}
					log.Info().Str("in", file).Str("out", out).Msg("rendered")
					return nil
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().Float64Var(&seconds, "seconds", 5.0, "duration to render")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 48000, "output sample rate")
	return cmd
}

func playCmd() *cobra.Command {
	var sampleRate int
	cmd := &cobra.Command{
		Use:   "play <file.ncft>",
		Short: "Compile a project and play it through the realtime backend until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := uuid.New().String()
			logger := log.With().Str("session", sessionID).Logger()

			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			player, err := synthgraph.NewPlayer(sampleRate)
			if err != nil {
				return err
			}
			player.Load(p)
			if err := player.Play(); err != nil {
				return err
			}
			defer player.Stop()
			logger.Info().Str("file", args[0]).Msg("playing")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			<-sigCh
			logger.Info().Msg("stopped")
			return nil
		},
	}
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 48000, "output sample rate")
	return cmd
}

// schemaDump mirrors nodes.Schema into a JSON-friendly shape; Schema's
// Combine/Allocate function fields can't marshal directly.
type schemaDump struct {
	Kind   nodes.Kind    `json:"kind"`
	Ins    []nodes.Port  `json:"ins,omitempty"`
	Outs   []string      `json:"outs,omitempty"`
	Params []nodes.Param `json:"params,omitempty"`
	Unique bool          `json:"unique,omitempty"`
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Dump the closed node-kind schema registry as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := nodes.Schemas()
			dump := make([]schemaDump, 0, len(reg))
			for _, sch := range reg {
				if sch.Internal {
					continue
				}
				dump = append(dump, schemaDump{
					Kind:   sch.Kind,
					Ins:    sch.Ins,
					Outs:   sch.Outs,
					Params: sch.Params,
					Unique: sch.Unique,
				})
			}
			out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(dump, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
