package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/repository/memory"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/shopspring/decimal"
	goslack "github.com/slack-go/slack"
)

type postedMessage struct {
	ChannelID string
	Text      string
}

type mockSlackService struct {
	mu     sync.Mutex
	posted []postedMessage
	ch     chan postedMessage
}

func newMockSlackService() *mockSlackService {
	return &mockSlackService{ch: make(chan postedMessage, 16)}
}

func (m *mockSlackService) PostMessage(ctx context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	msg := postedMessage{ChannelID: channelID, Text: text}
	m.mu.Lock()
	m.posted = append(m.posted, msg)
	m.mu.Unlock()
	m.ch <- msg
	return "1700000000.000100", nil
}

// wait returns the next posted message or fails after a timeout
func (m *mockSlackService) wait(t *testing.T) postedMessage {
	t.Helper()
	select {
	case msg := <-m.ch:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for slack message")
		return postedMessage{}
	}
}

// expectNone fails when a message is posted within a short window
func (m *mockSlackService) expectNone(t *testing.T) {
	t.Helper()
	select {
	case msg := <-m.ch:
		t.Fatalf("unexpected slack message: %s", msg.Text)
	case <-time.After(200 * time.Millisecond):
	}
}

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func day(month time.Month, dd int) time.Time {
	return time.Date(2026, month, dd, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	uc      *usecase.UseCases
	slack   *mockSlackService
	project *model.Project
	account *model.ControlAccount
}

func setup(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	svc := newMockSlackService()
	uc := usecase.New(memory.New(), append([]usecase.Option{usecase.WithSlackService(svc)}, opts...)...)

	project, err := uc.Project.CreateProject(ctx, usecase.CreateProjectInput{
		ID:             "gas-plant",
		Name:           "Gas plant",
		Currency:       "USD",
		SlackChannelID: "C-PROJECT",
	})
	gt.NoError(t, err).Required()

	account, err := uc.ControlAccount.CreateControlAccount(ctx, project.ID, usecase.CreateControlAccountInput{
		WBSCode: "1.1",
		Name:    "Civil works",
		BAC:     d(1000),
	})
	gt.NoError(t, err).Required()

	return &fixture{uc: uc, slack: svc, project: project, account: account}
}

func period(at time.Time, pv, ev, ac int64) usecase.AppendRecordInput {
	return usecase.AppendRecordInput{
		DataDate:   at,
		PeriodType: types.PeriodMonthly,
		PV:         d(pv),
		EV:         d(ev),
		AC:         d(ac),
	}
}

func (f *fixture) appendRecord(t *testing.T, at time.Time, pv, ev, ac int64) *model.EVMRecord {
	t.Helper()
	rec, err := f.uc.EVM.AppendRecord(context.Background(), f.account.ID, period(at, pv, ev, ac))
	gt.NoError(t, err).Required()
	return rec
}

func (f *fixture) createRisk(t *testing.T, title string, p, i types.Score, cost int64) *model.Risk {
	t.Helper()
	risk, err := f.uc.Risk.CreateRisk(context.Background(), f.project.ID, usecase.CreateRiskInput{
		Title:      title,
		CostImpact: d(cost),
		Inherent:   &model.Assessment{Probability: p, Impact: i},
	})
	gt.NoError(t, err).Required()
	return risk
}
