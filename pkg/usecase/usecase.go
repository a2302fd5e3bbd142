package usecase

import (
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model/config"
	"github.com/secmon-lab/argus/pkg/service/slack"
)

// DefaultRollupConcurrency bounds the per-account fetches of a project roll-up
const DefaultRollupConcurrency = 8

type UseCases struct {
	repo              interfaces.Repository
	config            *config.Config
	slackService      slack.Service
	rollupConcurrency int

	Project        *ProjectUseCase
	ControlAccount *ControlAccountUseCase
	EVM            *EVMUseCase
	Risk           *RiskUseCase
	Report         *ReportUseCase
}

type Option func(*UseCases)

// WithConfig sets the scale labels, simulation defaults and alert thresholds
func WithConfig(cfg *config.Config) Option {
	return func(uc *UseCases) {
		uc.config = cfg
	}
}

// WithSlackService enables notifications to the project's Slack channel
func WithSlackService(svc slack.Service) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
	}
}

// WithRollupConcurrency sets how many control accounts a roll-up reads at once
func WithRollupConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.rollupConcurrency = n
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:              repo,
		config:            config.Default(),
		rollupConcurrency: DefaultRollupConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}
	if uc.rollupConcurrency < 1 {
		uc.rollupConcurrency = 1
	}

	n := &notifier{repo: repo, slackService: uc.slackService}

	uc.Project = NewProjectUseCase(repo)
	uc.ControlAccount = NewControlAccountUseCase(repo)
	uc.EVM = NewEVMUseCase(repo, uc.config, n, uc.rollupConcurrency)
	uc.Risk = NewRiskUseCase(repo, uc.config, n)
	uc.Report = NewReportUseCase(repo, uc.EVM, uc.Risk)

	return uc
}

// Config returns the configuration the use cases run with
func (uc *UseCases) Config() *config.Config {
	return uc.config
}
