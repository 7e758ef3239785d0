package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ely.by/authlib/internal/security"
)

var tokenFlags struct {
	Server string
	Scopes []string
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Creates a new token, which allows a game server to interact with the gateway API",
	RunE: func(cmd *cobra.Command, args []string) error {
		container := shouldGetContainer()
		var auth *security.Jwt
		err := container.Resolve(&auth)
		if err != nil {
			return err
		}

		scopes := make([]security.Scope, len(tokenFlags.Scopes))
		for i, scope := range tokenFlags.Scopes {
			scopes[i] = security.Scope(scope)
		}

		token, err := auth.NewToken(tokenFlags.Server, scopes...)
		if err != nil {
			return fmt.Errorf("unable to create a new token: %w", err)
		}

		fmt.Println(token)

		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenFlags.Server, "server", "", "name of the game server the token is issued to")
	_ = tokenCmd.MarkFlagRequired("server")
	tokenCmd.Flags().StringSliceVar(
		&tokenFlags.Scopes,
		"scope",
		[]string{string(security.SessionScope), string(security.ProfilesScope)},
		"scopes granted by the token",
	)
	RootCmd.AddCommand(tokenCmd)
}
