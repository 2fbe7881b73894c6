// Package cmd implements the command-line interface for reelnotes.
package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/reelnotes/reelnotes/auth"
	"github.com/reelnotes/reelnotes/color"
	"github.com/reelnotes/reelnotes/icon"
	"github.com/reelnotes/reelnotes/style"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

// authCmd serves as the parent command for video-notes service credentials.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the access token for the video-notes service",
	Run: func(cmd *cobra.Command, args []string) {
		var token string

		prompt := &survey.Password{
			Message: "Service access token:",
		}
		handleErr(survey.AskOne(prompt, &token, survey.WithValidator(survey.Required)))

		handleErr(auth.SetToken(token))
		fmt.Printf("%s token stored in the system keyring\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

// authStatusCmd reports whether a service token is currently stored.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a service access token is currently stored",
	Run: func(cmd *cobra.Command, args []string) {
		_, err := auth.GetToken()
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Printf("%s no token stored\n", icon.Get(icon.Fail))
			return
		}
		handleErr(err)

		fmt.Printf("%s token present\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authDeleteCmd)
}

// authDeleteCmd removes the stored service token from the system keyring.
var authDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the stored service access token from the system keyring",
	Aliases: []string{"logout"},
	Run: func(cmd *cobra.Command, args []string) {
		err := auth.DeleteToken()
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Printf("%s no token stored\n", icon.Get(icon.Fail))
			return
		}
		handleErr(err)

		fmt.Printf("%s token removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
