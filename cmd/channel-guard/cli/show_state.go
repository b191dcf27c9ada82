package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/channelguard/channel-guard/internal/types"
)

func ShowStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-state [channel-id]",
		Short: "Prints the stored state of all channels, or of one channel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showState,
	}
}

func showState(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, closeStore, err := openStateStore(ctx, &cfg.State)
	if err != nil {
		return err
	}
	defer closeStore()

	states, err := store.Load(ctx)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		chanID, err := types.ParseChannelID(args[0])
		if err != nil {
			return err
		}
		key := types.ChannelKey(chanID)

		state, ok := states[key]
		if !ok {
			return fmt.Errorf("channel %s has no stored state", types.HumanChannelID(chanID))
		}
		states = map[string]types.ChannelState{key: state}
	}

	out, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
