package cmd

import (
	"fmt"
	"io"
	"net"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ely.by/authlib/internal/profiles"
	"ely.by/authlib/internal/session"
)

var checkFlags struct {
	Username string
	ServerId string
	Ip       string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Checks whether the player has joined the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		var address net.IP
		if checkFlags.Ip != "" {
			address = net.ParseIP(checkFlags.Ip)
			if address == nil {
				return fmt.Errorf("invalid ip address %q", checkFlags.Ip)
			}
		}

		container := shouldGetContainer()

		var verifier *session.Verifier
		if err := container.Resolve(&verifier); err != nil {
			return err
		}

		profile := profiles.NewProfile(uuid.Nil, checkFlags.Username)

		var joined *profiles.Profile
		var err error
		if address != nil {
			joined, err = verifier.CheckJoinedFrom(cmd.Context(), profile, checkFlags.ServerId, address)
		} else {
			joined, err = verifier.CheckJoined(cmd.Context(), profile, checkFlags.ServerId)
		}

		if err != nil {
			return err
		}

		if joined == nil {
			fmt.Println("The player has not joined the server")
			return nil
		}

		printProfile(os.Stdout, joined)

		return nil
	},
}

func printProfile(w io.Writer, profile *profiles.Profile) {
	_, _ = fmt.Fprintf(w, "Id:   %s\n", profile.Id)
	_, _ = fmt.Fprintf(w, "Name: %s\n", profile.Name)

	names := make([]string, 0, len(profile.Properties))
	for name := range profile.Properties {
		names = append(names, name)
	}

	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", name, profile.Properties[name].Value)
	}
}

func init() {
	checkCmd.Flags().StringVar(&checkFlags.Username, "username", "", "player name")
	checkCmd.Flags().StringVar(&checkFlags.ServerId, "server-id", "", "server id of the handshake")
	checkCmd.Flags().StringVar(&checkFlags.Ip, "ip", "", "address the player connects from")
	_ = checkCmd.MarkFlagRequired("username")
	_ = checkCmd.MarkFlagRequired("server-id")

	RootCmd.AddCommand(checkCmd)
}
