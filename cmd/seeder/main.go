package main

import (
	"context"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/remote"
	"github.com/prometheus/client_golang/prometheus"
)

// Simplified config loading for the script
func loadOptions() database.Options {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	opts := database.Options{
		DBName:      os.Getenv("DB_NAME"),
		PrimaryURL:  os.Getenv("TURSO_PRIMARY_URL"),
		AuthToken:   os.Getenv("TURSO_AUTH_TOKEN"),
		PostgresURL: os.Getenv("DATABASE_URL"),
	}
	if opts.DBName == "" {
		opts.DBName = "courtside.db"
	}
	return opts
}

var demoRoster = []club.RosterMember{
	{FirstName: "Lucas", LastName: "Martin", Position: club.PositionPointGuard, Team: club.TeamTwo, IsCaptain: true},
	{FirstName: "Hugo", LastName: "Bernard", Position: club.PositionShootingGuard, Team: club.TeamTwo},
	{FirstName: "Théo", LastName: "Dubois", Position: club.PositionSmallForward, Team: club.TeamTwo},
	{FirstName: "Nathan", LastName: "Thomas", Position: club.PositionPowerForward, Team: club.TeamTwo},
	{FirstName: "Louis", LastName: "Robert", Position: club.PositionCenter, Team: club.TeamTwo},
	{FirstName: "Jules", LastName: "Richard", Position: club.PositionPointGuard, Team: club.TeamThree, IsCaptain: true},
	{FirstName: "Arthur", LastName: "Petit", Position: club.PositionShootingGuard, Team: club.TeamThree},
	{FirstName: "Raphaël", LastName: "Durand", Position: club.PositionSmallForward, Team: club.TeamThree},
	{FirstName: "Tom", LastName: "Leroy", Position: club.PositionPowerForward, Team: club.TeamThree},
	{FirstName: "Adam", LastName: "Moreau", Position: club.PositionCenter, Team: club.TeamThree},
}

var demoStatuses = []club.AttendanceStatus{
	club.StatusPresent, club.StatusPresent, club.StatusPresent, club.StatusAbsent,
	club.StatusAbsentWarned, club.StatusInjured, club.StatusExcused,
}

func main() {
	log.Info("Starting database seeder...")
	opts := loadOptions()

	db, dialect, teardown, err := database.InitDB(opts)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	stores := app.NewStores(remote.NewSQL(db, dialect), metrics.NewService(prometheus.NewRegistry()))

	for _, m := range demoRoster {
		created, err := stores.Roster.Add(ctx, m)
		if err != nil {
			log.Fatalf("Failed to add roster member %s %s: %s", m.FirstName, m.LastName, err)
		}
		log.Info("Added roster member", "memberID", created.ID, "name", created.FullName())
	}

	// Four weekly sessions: the three past ones get a validated call.
	today := time.Now()
	themes := []string{"Shooting", "Defense", "Fast break", "Set plays"}
	for week, theme := range themes {
		date := today.AddDate(0, 0, 7*(week-2))
		session, err := stores.Trainings.Add(ctx, club.TrainingSession{
			Date:     date.Format("2006-01-02"),
			Time:     "19:00",
			Theme:    theme,
			Location: "Gymnase municipal",
		})
		if err != nil {
			log.Fatalf("Failed to add training session: %s", err)
		}
		log.Info("Added training session", "sessionID", session.ID, "date", session.Date)
		if !date.Before(today.AddDate(0, 0, -1)) {
			continue
		}

		v := attendance.NewView(stores.Roster.List(), stores.Trainings.Sessions(), stores.Trainings.Records())
		call := attendance.NewCall(session, v)
		if err := call.Start(); err != nil {
			log.Fatalf("Failed to start call: %s", err)
		}
		for _, m := range call.Members() {
			if err := call.Assign(m.ID, demoStatuses[rand.Intn(len(demoStatuses))]); err != nil {
				log.Fatalf("Failed to assign status: %s", err)
			}
		}
		if _, err := call.Validate(ctx, func(ctx context.Context, entries []club.AttendanceEntry) error {
			_, err := stores.Trainings.SaveAttendance(ctx, session.ID, entries)
			return err
		}); err != nil {
			log.Fatalf("Failed to save attendance: %s", err)
		}
	}

	opponents := []string{"ASVEL", "Lyon SO", "Villeurbanne BC", "Caluire"}
	members := stores.Roster.List()
	for i, opponent := range opponents {
		date := today.AddDate(0, 0, 7*(i-2)+3)
		team := club.TeamTwo
		if i%2 == 1 {
			team = club.TeamThree
		}
		match, err := stores.Matches.Add(ctx, club.Match{
			Date:     date.Format("2006-01-02"),
			Time:     "20:30",
			Opponent: opponent,
			Location: "Home",
			Team:     team,
		})
		if err != nil {
			log.Fatalf("Failed to add match: %s", err)
		}

		var players []int64
		for _, m := range members {
			if m.Team == team {
				players = append(players, m.ID)
			}
		}
		if _, err := stores.Matches.UpdatePlayers(ctx, match.ID, players); err != nil {
			log.Fatalf("Failed to select players: %s", err)
		}
		if date.Before(today) {
			score := club.Score{Ours: 55 + rand.Intn(30), Theirs: 55 + rand.Intn(30)}
			if _, err := stores.Matches.UpdateScore(ctx, match.ID, score); err != nil {
				log.Fatalf("Failed to record score: %s", err)
			}
			if _, _, err := stores.Roles.Assign(ctx, players[0], club.RoleScorer, match.ID); err != nil {
				log.Fatalf("Failed to assign role: %s", err)
			}
		}
		log.Info("Added match", "matchID", match.ID, "opponent", opponent)
	}

	if _, err := stores.News.Save(ctx, []club.NewsLink{
		{Title: "Club website", URL: "https://example.org/basket", Type: club.LinkWeb},
		{Title: "Club Instagram", URL: "https://instagram.com/example_basket", Type: club.LinkInstagram},
	}); err != nil {
		log.Fatalf("Failed to save news links: %s", err)
	}

	log.Info("Database seeding completed successfully.")
}
