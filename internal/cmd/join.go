package cmd

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ely.by/authlib/internal/launcher"
	"ely.by/authlib/internal/profiles"
	"ely.by/authlib/internal/session"
)

var joinFlags struct {
	Username    string
	Id          string
	AccessToken string
	ServerId    string
	Launched    bool
}

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Notifies the identity directory that the player joins the server",
	Long: `Notifies the identity directory that the player joins the server.

A join is rejected with "not launched" unless the game client is launched.
The launch state comes from the launcher.launched config key (LAUNCHER_LAUNCHED env),
which is false by default. Pass --launched to mark the client as launched for this call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var id uuid.UUID
		if joinFlags.Id != "" {
			var err error
			id, err = uuid.Parse(joinFlags.Id)
			if err != nil {
				return fmt.Errorf("invalid player id: %w", err)
			}
		}

		container := shouldGetContainer()

		var state *launcher.State
		if err := container.Resolve(&state); err != nil {
			return err
		}

		var verifier *session.Verifier
		if err := container.Resolve(&verifier); err != nil {
			return err
		}

		if joinFlags.Launched {
			state.MarkLaunched()
		}

		err := verifier.VerifyJoin(
			cmd.Context(),
			profiles.NewProfile(id, joinFlags.Username),
			joinFlags.AccessToken,
			joinFlags.ServerId,
		)
		if err != nil {
			var rejected *session.AuthRejectedError
			if errors.As(err, &rejected) {
				fmt.Printf("Join rejected: %s\n", rejected.Reason)
				return nil
			}

			return err
		}

		fmt.Println("Joined")

		return nil
	},
}

func init() {
	joinCmd.Flags().StringVar(&joinFlags.Username, "username", "", "player name")
	joinCmd.Flags().StringVar(&joinFlags.Id, "id", "", "player uuid")
	joinCmd.Flags().StringVar(&joinFlags.AccessToken, "access-token", "", "access token issued to the player")
	joinCmd.Flags().StringVar(&joinFlags.ServerId, "server-id", "", "server id of the handshake")
	joinCmd.Flags().BoolVar(&joinFlags.Launched, "launched", false, "mark the game client as launched before joining")
	_ = joinCmd.MarkFlagRequired("username")
	_ = joinCmd.MarkFlagRequired("access-token")
	_ = joinCmd.MarkFlagRequired("server-id")

	RootCmd.AddCommand(joinCmd)
}
