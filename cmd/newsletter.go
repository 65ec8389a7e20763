package main

import (
	"github.com/spf13/cobra"

	"studio-space-backend/internal/config"
	"studio-space-backend/internal/logger"
	"studio-space-backend/internal/mailer"
	"studio-space-backend/internal/repo"
)

var trendingLimit int

var newsletterCmd = &cobra.Command{
	Use:   "newsletter",
	Short: "Send the weekly inspiration email to subscribers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		closeDB, err := connectDB()
		if err != nil {
			return err
		}
		defer closeDB()

		sender, err := mailer.NewSender(env.EmailProvider, env.EmailAPIKey, env.EmailSender)
		if err != nil {
			return err
		}
		notifier := mailer.NewNotifier(sender, env.FrontendURL)

		users := repo.NewUserRepository(config.DB)
		tags := repo.NewTagRepository(config.DB)

		popular, err := tags.Popular(ctx, trendingLimit)
		if err != nil {
			return err
		}
		trending := make([]string, 0, len(popular))
		for _, t := range popular {
			trending = append(trending, t.Name)
		}

		subscribers, err := users.NewsletterSubscribers(ctx)
		if err != nil {
			return err
		}

		sent, failed := 0, 0
		for i := range subscribers {
			ok, err := notifier.Newsletter(ctx, &subscribers[i], trending)
			if err != nil {
				failed++
				logger.Log.WithError(err).WithField("user_id", subscribers[i].ID).Warn("newsletter not sent")
				continue
			}
			if ok {
				sent++
			}
		}
		logger.Log.WithField("sent", sent).WithField("failed", failed).Info("newsletter run finished")
		return nil
	},
}

func init() {
	newsletterCmd.Flags().IntVar(&trendingLimit, "trending", 5, "number of trending tags to include")
}
