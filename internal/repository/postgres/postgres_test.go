package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/service/draw"
	"github.com/ignite/advent-ledger/internal/service/quiz"
	"github.com/ignite/advent-ledger/internal/service/report"
	"github.com/ignite/advent-ledger/internal/service/rollup"
)

func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

var day = time.Date(2026, 12, 3, 0, 0, 0, 0, time.UTC)

func TestApplyIncrementSingleStatement(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("WITH new_visitor AS")).
		WithArgs("c1", day, "abc123", 1, 1, 0, 0, 0, 1, 0, 0, 0, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewRollupRepo(db).ApplyIncrement(context.Background(), rollup.Increment{
		CampaignID: "c1", Date: day, VisitorHash: "abc123",
		TotalViews: 1, MobileViews: 1, SocialTraffic: 1,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyIncrementWithoutVisitorPassesNull(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (campaign_id, date) DO UPDATE")).
		WithArgs("c1", day, nil, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewRollupRepo(db).ApplyIncrement(context.Background(), rollup.Increment{
		CampaignID: "c1", Date: day, TotalEntries: 1,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyIncrementWrapsError(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	boom := errors.New("deadlock")
	mock.ExpectExec("WITH new_visitor").WillReturnError(boom)

	err := NewRollupRepo(db).ApplyIncrement(context.Background(), rollup.Increment{CampaignID: "c1", Date: day})
	assert.ErrorIs(t, err, boom)
}

func TestReplaceSummaryRunsInTransaction(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO daily_visitors").
		WithArgs("c1", "2026-12-03", day, day.Add(24*time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO analytics_summaries").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewRollupRepo(db).ReplaceSummary(context.Background(), domain.AnalyticsSummary{
		CampaignID: "c1", Date: day, TotalViews: 5, UniqueVisitors: 3,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComputeDayBindsUTCWindow(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	// A caller passing a non-UTC instant still gets the UTC calendar day.
	est := time.FixedZone("EST", -5*60*60)
	late := time.Date(2026, 12, 2, 22, 30, 0, 0, est) // 2026-12-03 03:30 UTC

	mock.ExpectQuery(regexp.QuoteMeta("created_at >= $3::timestamptz AND created_at < $4::timestamptz")).
		WithArgs("c1", "2026-12-03", day, day.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"campaign_id", "date", "total_views", "unique_visitors", "total_entries"}).
			AddRow("c1", day, 7, 4, 2))

	s, err := NewRollupRepo(db).ComputeDay(context.Background(), "c1", late)
	require.NoError(t, err)
	assert.Equal(t, 7, s.TotalViews)
	assert.Equal(t, 2, s.TotalEntries)
	assert.True(t, s.Date.Equal(day))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackfillDuration(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewEngagementRepo(db)

	mock.ExpectExec("UPDATE calendar_views").
		WithArgs("c1", "s1", 30).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE calendar_views").
		WithArgs("c1", "s1", 45).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.BackfillDuration(context.Background(), "c1", "s1", 30)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.BackfillDuration(context.Background(), "c1", "s1", 45)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertCalendarView(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO calendar_views").
		WithArgs("v1", "c1", "s1", "hash", "mobile", "Safari", "iOS", "", "direct", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewEngagementRepo(db).InsertCalendarView(context.Background(), &domain.CalendarView{
		ID: "v1", CampaignID: "c1", SessionID: "s1", VisitorHash: "hash",
		DeviceType: domain.DeviceMobile, Browser: "Safari", OS: "iOS",
		Source: domain.SourceDirect, CreatedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDoorWinnerTranslatesUniqueViolation(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewDrawRepo(db)

	mock.ExpectExec("INSERT INTO door_winners").
		WillReturnError(&pq.Error{Code: "23505", Constraint: doorWinnerConstraint})

	err := repo.CreateDoorWinner(context.Background(), &domain.Winner{ID: "w1", DoorID: "d1"})
	assert.ErrorIs(t, err, draw.ErrWinnerAlreadySelected)
}

func TestCreateDoorWinnerOtherErrors(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewDrawRepo(db)

	// A foreign key failure is not a conflict.
	mock.ExpectExec("INSERT INTO door_winners").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "door_winners_lead_id_fkey"})

	err := repo.CreateDoorWinner(context.Background(), &domain.Winner{ID: "w1", DoorID: "d1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, draw.ErrWinnerAlreadySelected)
}

func TestCreateLandingWinnerTranslatesUniqueViolation(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO landing_winners").
		WillReturnError(&pq.Error{Code: "23505", Constraint: landingWinnerConstraint})

	err := NewDrawRepo(db).CreateLandingWinner(context.Background(), &domain.LandingWinner{ID: "w1", CampaignID: "c1"})
	assert.ErrorIs(t, err, draw.ErrWinnerAlreadySelected)
}

func TestGetDoorWinnerNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, door_id, lead_id, entry_id").
		WithArgs("d1").
		WillReturnError(sql.ErrNoRows)

	_, err := NewDrawRepo(db).GetDoorWinner(context.Background(), "d1")
	assert.ErrorIs(t, err, draw.ErrNotFound)
}

func TestCreateEntryExistingReturnsStoredRow(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	entered := day.Add(time.Hour)
	mock.ExpectExec("INSERT INTO entries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, lead_id, door_id, entered_at").
		WithArgs("l1", "d1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "lead_id", "door_id", "entered_at"}).
			AddRow("e-old", "l1", "d1", entered))

	e := &domain.Entry{ID: "e-new", LeadID: "l1", DoorID: "d1", EnteredAt: day.Add(2 * time.Hour)}
	created, err := NewDrawRepo(db).CreateEntry(context.Background(), e)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "e-old", e.ID)
	assert.Equal(t, entered, e.EnteredAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertLeadReportsInsert(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO leads").
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "email", "name", "phone", "created_at", "inserted"}).
			AddRow("l-existing", "c1", "ann@example.com", "Ann", "", day, false))

	lead, inserted, err := NewDrawRepo(db).UpsertLead(context.Background(), &domain.Lead{
		ID: "l-new", CampaignID: "c1", Email: "ANN@example.com", CreatedAt: day,
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "l-existing", lead.ID)
	assert.Equal(t, "Ann", lead.Name)
}

func TestDeleteLandingWinnerNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM landing_winners").
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewDrawRepo(db).DeleteLandingWinner(context.Background(), "c1")
	assert.ErrorIs(t, err, draw.ErrNotFound)
}

func TestSetLandingVisibility(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("UPDATE landing_winners SET is_public").
		WithArgs("c1", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "lead_id", "is_public", "selected_at"}).
			AddRow("w1", "c1", "l1", true, day))

	w, err := NewDrawRepo(db).SetLandingVisibility(context.Background(), "c1", true)
	require.NoError(t, err)
	assert.True(t, w.IsPublic)
	assert.Equal(t, "l1", w.LeadID)
}

func TestReportViewTotalsAndDoorStats(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewReportRepo(db)
	q := report.Query{CampaignID: "c1", From: day, To: day.Add(36 * time.Hour)}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS views").
		WithArgs("c1", q.From, q.To).
		WillReturnRows(sqlmock.NewRows([]string{"views", "unique_visitors"}).AddRow(10, 7))
	mock.ExpectQuery("WITH page_views AS").
		WithArgs("c1", q.From, q.To).
		WillReturnRows(sqlmock.NewRows([]string{"door_id", "door_number", "views", "clicks", "entries"}).
			AddRow("d1", 1, 10, 4, 2).
			AddRow("d2", 2, 10, 0, 0))

	totals, err := repo.ViewTotals(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, report.ViewTotals{Views: 10, UniqueVisitors: 7}, totals)

	doors, err := repo.DoorStats(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, doors, 2)
	assert.Equal(t, 4, doors[0].Clicks)
	assert.Equal(t, 2, doors[0].Entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRollupQueriesUseDayBounds(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewReportRepo(db)
	q := report.Query{CampaignID: "c1", From: day.Add(5 * time.Hour), To: day.Add(30 * time.Hour)}

	mock.ExpectQuery("SUM\\(mobile_views\\)").
		WithArgs("c1", day, day.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"mobile_views", "tablet_views", "desktop_views"}).AddRow(3, 1, 6))
	mock.ExpectQuery("to_char\\(date").
		WithArgs("c1", day, day.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"date", "views", "visitors", "entries"}).
			AddRow("2026-12-03", 6, 4, 1).
			AddRow("2026-12-04", 4, 4, 0))

	devices, err := repo.DeviceBreakdown(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"mobile": 3, "tablet": 1, "desktop": 6}, devices)

	tl, err := repo.Timeline(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []domain.TimelinePoint{
		{Date: "2026-12-03", Views: 6, Visitors: 4, Entries: 1},
		{Date: "2026-12-04", Views: 4, Visitors: 4, Entries: 0},
	}, tl)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvgSessionDurationNull(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("AVG\\(duration\\)").
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))

	avg, err := NewReportRepo(db).AvgSessionDuration(context.Background(), report.Query{CampaignID: "c1"})
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestGetCampaignNotFoundUsesCallerSentinel(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("FROM campaigns").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := NewReportRepo(db).GetCampaign(context.Background(), "nope")
	assert.ErrorIs(t, err, report.ErrNotFound)
}

func TestLeadsListRows(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	first := day.Add(9 * time.Hour)
	mock.ExpectQuery("FROM leads l").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"email", "name", "phone", "created_at", "first_entry", "total_entries", "doors", "wins", "prizes"}).
			AddRow("ann@example.com", "Ann", "", day, first, 2, "{1,4}", 1, `{"Mug"}`).
			AddRow("bob@example.com", "", "", day, nil, 0, "{}", 0, "{}"))

	rows, err := NewLeadsRepo(db).ListRows(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []int{1, 4}, rows[0].DoorNumbers)
	assert.Equal(t, []string{"Mug"}, rows[0].Prizes)
	require.NotNil(t, rows[0].FirstEntry)
	assert.Equal(t, first, *rows[0].FirstEntry)
	assert.Nil(t, rows[1].FirstEntry)
	assert.Equal(t, day, rows[1].RegisteredAt)
	assert.Empty(t, rows[1].DoorNumbers)
}

func TestQuizReplaceTransaction(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM doors WHERE id = $1 FOR UPDATE")).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("DELETE FROM questions").WithArgs("d1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO questions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO questions").WillReturnError(errors.New("check violation"))
	mock.ExpectRollback()

	err := NewQuizRepo(db).Replace(context.Background(), "d1", []domain.Question{
		{ID: "q1", Position: 0, Type: domain.QuestionText, Prompt: "a"},
		{ID: "q2", Position: 1, Type: "bogus", Prompt: "b"},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizReplaceLocksDoorBeforeDelete(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("DELETE FROM questions").WithArgs("d1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO questions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewQuizRepo(db).Replace(context.Background(), "d1", []domain.Question{
		{ID: "q1", Position: 0, Type: domain.QuestionText, Prompt: "a"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizReplaceMissingDoor(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("gone").WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	err := NewQuizRepo(db).Replace(context.Background(), "gone", nil)
	assert.ErrorIs(t, err, quiz.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
