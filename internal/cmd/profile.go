package cmd

import (
	"context"
	"strings"

	"github.com/campuscoders/campus-cli/pkg/service"
	"github.com/spf13/cobra"
)

func newProfileCmd(r *root) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Your own profile",
	}

	var in service.SetupInput
	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Complete or update your profile",
		Long: `Set your gender, course, year and bio, and optionally upload an avatar.
New accounts must finish this step before the feed is available.
Values not given as flags are prompted for.`,
		Example: `  campus profile setup --gender female --course CS --year 2 --avatar me.png`,
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewProfileService(env).Setup(ctx, in)
		}),
	}
	setupCmd.Flags().StringVar(&in.Gender, "gender", "", "Gender ("+strings.Join(service.Genders, ", ")+")")
	setupCmd.Flags().StringVar(&in.Course, "course", "", "Course of study")
	setupCmd.Flags().StringVar(&in.Year, "year", "", "Year of study")
	setupCmd.Flags().StringVar(&in.Bio, "bio", "", "Short bio")
	setupCmd.Flags().StringVar(&in.Avatar, "avatar", "", "Avatar image to upload")

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Show your profile",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewProfileService(env).Me(ctx)
		}),
	}

	profileCmd.AddCommand(setupCmd, meCmd)
	return profileCmd
}
