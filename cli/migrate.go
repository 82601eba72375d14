package cli

import (
	"log"

	"surveyquiz/config"
	"surveyquiz/models"
	"surveyquiz/services"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the schema and seeds the initial subjects.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and seed the subject catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}

			err = db.AutoMigrate(
				&models.User{},
				&models.Subject{},
				&models.Quiz{},
				&models.Question{},
				&models.Answer{},
				&models.Respondent{},
				&models.TakenQuiz{},
				&models.RespondentAnswer{},
			)
			if err != nil {
				return err
			}

			if err := services.NewSubjectService(db).Seed(); err != nil {
				return err
			}

			log.Println("Migrations applied and subjects seeded")
			return nil
		},
	}
}
