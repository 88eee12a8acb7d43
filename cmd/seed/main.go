package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/db"
)

const (
	seedCalendar = "Calendar"
	seedDays     = 14
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}
	userID := os.Getenv("ARCHIVE_USER_ID")
	if userID == "" {
		userID = "demo-user"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	customers := make([]string, 6)
	for i := range customers {
		customers[i] = gofakeit.Company()
	}

	if err := seedCalendarDays(context.Background(), pool, userID, customers); err != nil {
		log.Fatalf("seed calendar: %v", err)
	}
	if err := seedRecurringStandup(context.Background(), pool, userID); err != nil {
		log.Fatalf("seed recurring standup: %v", err)
	}

	log.Println("seed complete")
}

// seedCalendarDays fills the past seedDays weekdays with customer meetings,
// personal entries, travel blocks, deliberate overlaps, and modifier rows
// next to some of the meetings. One transaction per day.
func seedCalendarDays(ctx context.Context, pool *pgxpool.Pool, userID string, customers []string) error {
	log.Printf("seeding %d days for user=%s", seedDays, userID)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	total := 0
	for d := seedDays; d >= 1; d-- {
		day := today.AddDate(0, 0, -d)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		n, err := seedDay(ctx, tx, userID, day, customers)
		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("seed %s: %w", day.Format("2006-01-02"), err)
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		total += n
	}

	log.Printf("seeded %d appointments", total)
	return nil
}

func seedDay(ctx context.Context, tx pgx.Tx, userID string, day time.Time, customers []string) (int, error) {
	count := 0
	insert := func(subject string, start, end time.Time, categories []string, showAs appointment.ShowAs, importance appointment.Importance) error {
		if err := insertAppointment(ctx, tx, userID, subject, start, end, categories, showAs, importance); err != nil {
			return err
		}
		count++
		return nil
	}

	at := func(hour, min int) time.Time {
		return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
	}

	customer := func() string {
		return customers[gofakeit.Number(0, len(customers)-1)]
	}

	billing := func() string {
		if gofakeit.Number(0, 9) < 7 {
			return "billable"
		}
		return "non-billable"
	}

	// Morning customer meeting, sometimes followed by an Extended marker
	// covering the overrun.
	c1 := customer()
	if err := insert(gofakeit.BuzzWord()+" review", at(9, 0), at(10, 0),
		[]string{c1 + " - " + billing()}, appointment.ShowAsBusy, appointment.ImportanceNormal); err != nil {
		return count, err
	}
	if gofakeit.Bool() {
		if err := insert("Extended", at(10, 0), at(10, 30),
			[]string{c1 + " - billable"}, appointment.ShowAsBusy, appointment.ImportanceNormal); err != nil {
			return count, err
		}
	}

	// Travel to the customer site, then the on-site session.
	c2 := customer()
	if err := insert("Drive to "+c2, at(11, 0), at(11, 45),
		nil, appointment.ShowAsBusy, appointment.ImportanceNormal); err != nil {
		return count, err
	}
	if err := insert("On-site with "+c2, at(11, 45), at(13, 0),
		[]string{c2 + " - billable"}, appointment.ShowAsBusy, appointment.ImportanceHigh); err != nil {
		return count, err
	}

	// Personal entry with no category at all.
	if err := insert(gofakeit.FirstName()+" lunch", at(13, 0), at(13, 30),
		nil, appointment.ShowAsBusy, appointment.ImportanceNormal); err != nil {
		return count, err
	}

	// Deliberate afternoon double booking, one side tentative so the
	// overlap resolver has something to do.
	c3 := customer()
	if err := insert("Planning with "+c3, at(14, 0), at(15, 0),
		[]string{c3 + " - " + billing()}, appointment.ShowAsBusy, appointment.ImportanceNormal); err != nil {
		return count, err
	}
	if err := insert("Maybe: "+gofakeit.BuzzWord()+" sync", at(14, 30), at(15, 30),
		[]string{customer() + " - non-billable"}, appointment.ShowAsTentative, appointment.ImportanceLow); err != nil {
		return count, err
	}

	// Late meeting that sometimes ran short, marked by a Shortened row.
	c4 := customer()
	if err := insert("Workshop with "+c4, at(15, 30), at(17, 0),
		[]string{c4 + " - billable"}, appointment.ShowAsBusy, appointment.ImportanceNormal); err != nil {
		return count, err
	}
	if gofakeit.Bool() {
		if err := insert("Shortened", at(16, 30), at(17, 0),
			[]string{c4 + " - billable"}, appointment.ShowAsBusy, appointment.ImportanceNormal); err != nil {
			return count, err
		}
	}

	// A free placeholder that no run should ever archive as work.
	if err := insert("Focus block", at(8, 0), at(9, 0),
		nil, appointment.ShowAsFree, appointment.ImportanceLow); err != nil {
		return count, err
	}

	return count, nil
}

// seedRecurringStandup adds one weekly recurring master so expansion has a
// series to work with.
func seedRecurringStandup(ctx context.Context, pool *pgxpool.Pool, userID string) error {
	now := time.Now().UTC()
	// First Monday at least four weeks back.
	start := time.Date(now.Year(), now.Month(), now.Day(), 9, 30, 0, 0, time.UTC).AddDate(0, 0, -28)
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, 1)
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO appointments (
			id, user_id, calendar, subject, start_time, end_time,
			categories, show_as, importance, sensitivity, rrule,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
	`, uuid.New(), userID, seedCalendar, "Team standup",
		start, start.Add(15*time.Minute),
		[]string{"admin - non-billable"},
		appointment.ShowAsBusy, appointment.ImportanceNormal, appointment.SensitivityNormal,
		"FREQ=WEEKLY;BYDAY=MO;COUNT=12")
	if err != nil {
		return err
	}

	log.Println("recurring standup seeded")
	return nil
}

func insertAppointment(ctx context.Context, tx pgx.Tx, userID, subject string, start, end time.Time, categories []string, showAs appointment.ShowAs, importance appointment.Importance) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO appointments (
			id, user_id, calendar, subject, start_time, end_time,
			categories, show_as, importance, sensitivity,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
	`, uuid.New(), userID, seedCalendar, subject, start, end,
		categories, showAs, importance, appointment.SensitivityNormal)
	return err
}
