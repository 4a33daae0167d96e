// Package chatctl implements the client-side CLI: an interactive chat
// session against a running chatd, a snapshot downloader and a status view.
package chatctl

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"chatd/internal/chat"
	"chatd/internal/config"
	"chatd/internal/hub"
)

// Run executes the chatctl command tree.
func Run(args []string) error {
	root := buildRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chatctl",
		Short:         "Chat with and manage a local chatd instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var host string
	root.PersistentFlags().StringVar(&host, "host", chat.DefaultHost, "chatd address (host:port)")

	chatCmd := &cobra.Command{
		Use:     "chat",
		Short:   "Start an interactive chat session",
		Example: "  chatctl chat\n  chatctl chat --max-tokens 500",
		RunE: func(cmd *cobra.Command, args []string) error {
			maxTokens, _ := cmd.Flags().GetInt("max-tokens")
			temperature, _ := cmd.Flags().GetFloat64("temperature")
			return runChat(cmd.Context(), host, maxTokens, temperature)
		},
	}
	chatCmd.Flags().Int("max-tokens", 500, "Maximum new tokens per reply")
	chatCmd.Flags().Float64("temperature", 0.7, "Sampling temperature")

	pullCmd := &cobra.Command{
		Use:     "pull [model-id]",
		Short:   "Download a model snapshot from the Hugging Face hub",
		Example: "  chatctl pull google/gemma-3-1b-it\n  HUGGINGFACE_TOKEN=hf_... chatctl pull google/gemma-3-1b-it",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modelID := "google/" + config.DefaultModelID
			if len(args) == 1 {
				modelID = args[0]
			}
			dir, _ := cmd.Flags().GetString("models-dir")
			return runPull(cmd.Context(), modelID, dir)
		},
	}
	pullCmd.Flags().String("models-dir", config.DefaultModelsDir, "Destination directory for snapshots")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the daemon's model and device status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), host)
		},
	}

	root.AddCommand(chatCmd, pullCmd, statusCmd)
	return root
}

func runChat(ctx context.Context, host string, maxTokens int, temperature float64) error {
	in, err := newLinerReader()
	if err != nil {
		return err
	}
	defer in.Close()
	client := chat.NewClient(host)
	session := chat.NewSession(client, in, os.Stdout, maxTokens, temperature)
	return session.Run(ctx)
}

func runPull(ctx context.Context, modelID, modelsDir string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	client := hub.NewClient("", config.HubToken(), log)
	fmt.Printf("Downloading %s into %s...\n", modelID, modelsDir)
	dir, err := client.Snapshot(ctx, modelID, modelsDir)
	if err != nil {
		return err
	}
	fmt.Printf("Snapshot ready: %s\n", dir)
	return nil
}

func runStatus(ctx context.Context, host string) error {
	client := chat.NewClient(host)
	st, err := client.Status(ctx)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Model", "Device", "Precision", "State", "Requests", "Uptime"})
	table.Append([]string{
		st.Model,
		st.Device,
		st.Precision,
		st.State,
		strconv.FormatUint(st.RequestsTotal, 10),
		fmt.Sprintf("%ds", st.UptimeSeconds),
	})
	table.Render()
	if st.LastError != "" {
		fmt.Printf("last error: %s\n", st.LastError)
	}
	return nil
}
