package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/biliterm/internal/config"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Manage the rooms opened on start",
}

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rooms opened on start",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rooms, err := config.LoadRooms(cfgPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(rooms) == 0 {
			fmt.Fprintln(out, "No startup rooms. Add one with: biliterm rooms add <room-id>")
			return nil
		}
		for _, id := range rooms {
			fmt.Fprintln(out, id)
		}
		return nil
	},
}

var roomsAddCmd = &cobra.Command{
	Use:   "add <room-id>...",
	Short: "Open rooms on start",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseRoomIDs(args)
		if err != nil {
			return err
		}
		for _, id := range ids {
			added, err := config.AddRoom(cfgPath, id)
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(cmd.OutOrStdout(), "Added room %d\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Room %d is already listed\n", id)
			}
		}
		return nil
	},
}

var roomsRemoveCmd = &cobra.Command{
	Use:     "remove <room-id>...",
	Aliases: []string{"rm"},
	Short:   "Stop opening rooms on start",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseRoomIDs(args)
		if err != nil {
			return err
		}
		for _, id := range ids {
			removed, err := config.RemoveRoom(cfgPath, id)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed room %d\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Room %d is not listed\n", id)
			}
		}
		return nil
	},
}

func init() {
	roomsCmd.AddCommand(roomsListCmd, roomsAddCmd, roomsRemoveCmd)
	rootCmd.AddCommand(roomsCmd)
}

func parseRoomIDs(args []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid room id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
