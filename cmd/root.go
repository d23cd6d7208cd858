// Package cmd wires the cobra root command, mirroring the teacher's
// insc.go/cins.go rootCmd + subcommand registration pattern (spec §3.4
// "CLI"). The reconstructor core is deliberately invoked the same way
// from both subcommands below: build the same collaborators (rpc
// client, walker, store, reconstructor, dependency resolver) from
// process-wide config,
// bound once at startup per spec §9 "Global configuration".
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zordinals/zordinals/chainwalker"
	"github.com/zordinals/zordinals/config"
	"github.com/zordinals/zordinals/deps"
	"github.com/zordinals/zordinals/log"
	"github.com/zordinals/zordinals/reconstruct"
	"github.com/zordinals/zordinals/rpcclient"
	"github.com/zordinals/zordinals/store"
	"github.com/zordinals/zordinals/tracing"
)

// RootCmd is the zordinals CLI's entry point.
var RootCmd = &cobra.Command{
	Use:   "zordinals",
	Short: "zordinals inscription reconstructor: decode and cache ord-style inscriptions from a Zcash-like chain.",
}

func init() {
	RootCmd.AddCommand(reconstructCmd)
	RootCmd.AddCommand(serveCmd)
}

// Execute runs the root command; main.go's only job is to call this and
// translate a non-nil error into a process exit code, per spec §6.1's
// "Exit status: 0 on full success; non-zero on any terminal error."
func Execute() error {
	return RootCmd.Execute()
}

// buildCore assembles the RPC client, chain walker, content store,
// reconstructor, and dependency resolver from process-wide configuration. Every subcommand below
// calls this exactly once.
func buildCore() (*reconstruct.Reconstructor, *deps.Resolver, *store.Store, error) {
	if err := config.Load(); err != nil {
		return nil, nil, nil, fmt.Errorf("zordinals: %w", err)
	}

	log.InitLogRotator(config.LogFile)
	if _, err := tracing.Init("zordinals", config.JaegerAgentAddr); err != nil {
		return nil, nil, nil, fmt.Errorf("zordinals: initializing tracer: %w", err)
	}

	client, err := rpcclient.New(
		rpcclient.WithURL(config.NodeRPCURL),
		rpcclient.WithUser(config.NodeRPCUser),
		rpcclient.WithPass(config.NodeRPCPass),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	walker := chainwalker.New(client, chainwalker.WithMaxDepth(int64(config.MaxSpenderDepth)))
	contentStore := store.New(config.ContentDir)
	recon := reconstruct.New(client, walker, contentStore)
	resolver := deps.New(recon, contentStore)
	return recon, resolver, contentStore, nil
}
