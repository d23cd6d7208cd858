package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zordinals/zordinals/constants"
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct <idOrTxid>",
	Short: "Decode an inscription and write its artifact into the content store.",
	Args:  cobra.ExactArgs(1),
	RunE:  runReconstruct,
}

// runReconstruct implements spec §6.1's inbound reconstruct operation:
// normalize, ensure, then recurse through dependency resolution when
// the artifact is HTML or SVG.
func runReconstruct(_ *cobra.Command, args []string) error {
	recon, resolver, _, err := buildCore()
	if err != nil {
		return err
	}

	ctx := context.Background()
	res, err := recon.EnsureInscription(ctx, args[0])
	if err != nil {
		return fmt.Errorf("zordinals: reconstructing %s: %w", args[0], err)
	}

	if constants.IsHTMLOrSVG(res.MimeType) {
		if err := resolver.Resolve(ctx, res); err != nil {
			return fmt.Errorf("zordinals: resolving dependencies of %s: %w", res.InscriptionId, err)
		}
	}

	fmt.Printf("%s: %s (fromCache=%v)\n", res.InscriptionId, res.MimeType, res.FromCache)
	return nil
}
