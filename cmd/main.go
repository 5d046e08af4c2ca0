package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"promovoice/internal/cli/scheme/colours"
	"promovoice/internal/config"
	"promovoice/internal/studio"
	"promovoice/internal/studio/music"
)

func main() {
	config.SetDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown: a signal cancels the batch, in-flight jobs wind
	// down through their contexts.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n" + colours.Warning.Sprint("Interrupted, stopping jobs..."))
		cancel()
	}()

	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "promovoice",
		Short: "🎙️ Promotional voice-over production studio",
		Long: `
PromoVoice turns campaign script variants into broadcast-ready voice-over
audio: previews each variant in three candidate voices, then renders the
final sections with background music, mastered for delivery.
		`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable debug logging")

	previewCmd := &cobra.Command{
		Use:   "preview <request.json>",
		Short: "🔊 Voice each variant's hook in three candidate voices",
		Long:  "Render the hook of every variant once per pool voice, without music, so a voice can be picked per variant",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runSession(ctx, args[0], cmd, false)
		},
	}

	produceCmd := &cobra.Command{
		Use:   "produce <request.json>",
		Short: "🎬 Render the final mastered deliverables",
		Long:  "Render every non-empty section of each variant in its chosen voice, mixed with background music",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runSession(ctx, args[0], cmd, true)
		},
	}

	musicCmd := &cobra.Command{
		Use:   "music [style]",
		Short: "🎵 Preview the built-in music styles",
		Long:  "Render a short sample of a background music style, cached for reuse",
		Run:   previewMusic,
	}

	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "🗣️ Show the voice pool for a market",
		Run:   listVoices,
	}

	for _, c := range []*cobra.Command{previewCmd, produceCmd} {
		c.Flags().StringP("provider", "p", "", "Force a speech provider (elevenlabs, google, espeak)")
		c.Flags().StringP("music", "m", "", "Background music style (upbeat, calm, corporate)")
	}
	voicesCmd.Flags().StringP("provider", "p", "", "Provider whose pool to show")
	voicesCmd.Flags().StringP("country", "c", "", "Target market country")
	voicesCmd.Flags().StringP("language", "l", "", "Target language")

	rootCmd.AddCommand(previewCmd, produceCmd, musicCmd, voicesCmd)

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func runSession(ctx context.Context, requestPath string, cmd *cobra.Command, final bool) {
	req, err := studio.LoadRequest(requestPath)
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		req.Provider = p
	}
	if m, _ := cmd.Flags().GetString("music"); m != "" {
		req.MusicStyle = m
	}

	app := studio.New(config.Load())

	fmt.Println()
	if final {
		colours.Title.Println("🎬 Final production run")
	} else {
		colours.Title.Println("🔊 Voice preview run")
	}
	fmt.Printf("  %d variant(s) for %s", len(req.Variants), orDefault(req.Country, "default market"))
	if req.Language != "" {
		fmt.Printf(" in %s", req.Language)
	}
	fmt.Println()
	fmt.Println()

	var sess *studio.Session
	if final {
		sess, err = app.Produce(ctx, req)
	} else {
		sess, err = app.Preview(ctx, req)
	}
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	printSession(sess)
}

func printSession(sess *studio.Session) {
	colours.Info.Printf("Provider: %s | Session: %s\n", sess.Provider, sess.ID)
	fmt.Println()

	colours.Prompt.Println("Voice pool:")
	for i, d := range sess.Pool {
		fmt.Printf("  %d. ", i+1)
		colours.Voice.Printf("%s", d.Name)
		fmt.Printf(" (%s", d.ID)
		if d.Label != "" {
			fmt.Printf(", %s", d.Label)
		}
		fmt.Println(")")
	}
	fmt.Println()

	for _, a := range sess.Artifacts {
		if a.Err != nil {
			colours.Error.Printf("  ✗ variant %d %s: %v\n", a.VariantID, a.Section, a.Err)
			continue
		}
		fmt.Printf("  ✓ %s", a.FileName)
		colours.Info.Printf("  %s", humanize.Bytes(uint64(a.SizeBytes)))
		if a.MusicMixed {
			fmt.Printf("  🎵")
		}
		fmt.Println()
	}
	fmt.Println()

	sum := sess.Summary
	if sum.Failed == 0 {
		colours.Success.Printf("✨ %d file(s) generated (%s)\n", sum.Generated, sum.Quality)
	} else {
		colours.Warning.Printf("⚠️ %d generated, %d failed\n", sum.Generated, sum.Failed)
	}
	colours.Info.Printf("📁 %s\n", sess.Dir)
}

func previewMusic(cmd *cobra.Command, args []string) {
	app := studio.New(config.Load())

	styles := make([]string, 0, len(music.Styles()))
	if len(args) > 0 {
		styles = append(styles, args[0])
	} else {
		for _, s := range music.Styles() {
			styles = append(styles, s.String())
		}
	}

	fmt.Println()
	colours.Title.Println("🎵 Music style previews")
	fmt.Println()
	for _, name := range styles {
		path, err := app.PreviewMusic(name)
		if err != nil {
			colours.Error.Printf("  ✗ %s: %v\n", name, err)
			continue
		}
		fmt.Printf("  ✓ %-10s %s\n", name, path)
	}
}

func listVoices(cmd *cobra.Command, args []string) {
	provider, _ := cmd.Flags().GetString("provider")
	country, _ := cmd.Flags().GetString("country")
	language, _ := cmd.Flags().GetString("language")

	app := studio.New(config.Load())
	p, pool := app.VoicePool(provider, country, language)

	fmt.Println()
	colours.Title.Printf("🗣️ %s voices for %s\n", p, orDefault(country, "default market"))
	fmt.Println()
	for i, d := range pool {
		fmt.Printf("  %d. ", i+1)
		colours.Voice.Printf("%s", d.Name)
		fmt.Printf(" %s", d.ID)
		if d.Label != "" {
			colours.Info.Printf(" (%s)", d.Label)
		}
		fmt.Println()
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Configuration management with Viper
func init() {
	viper.SetConfigName("promovoice")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.promovoice")
	viper.AddConfigPath(".")

	viper.ReadInConfig()
}
