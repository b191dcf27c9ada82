package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/channelguard/channel-guard/internal/db"
	"github.com/channelguard/channel-guard/internal/types"
)

func ResetStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-state <channel-id>",
		Short: "Forgets the stored state of a channel so the next start takes a fresh baseline",
		Long: "Forgets the stored state of a channel so the next start takes a fresh baseline.\n" +
			"Stop the guard of that channel first, a running guard writes its state back.",
		Args: cobra.ExactArgs(1),
		RunE: resetState,
	}
}

func resetState(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	chanID, err := types.ParseChannelID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, closeStore, err := openStateStore(ctx, &cfg.State)
	if err != nil {
		return err
	}
	defer closeStore()

	err = store.Delete(ctx, types.ChannelKey(chanID))
	if db.IsNotFoundError(err) {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "channel %s has no stored state\n", types.HumanChannelID(chanID))
		return err
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "state of channel %s removed\n", types.HumanChannelID(chanID))
	return err
}
