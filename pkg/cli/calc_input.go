package cli

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/evm"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Amounts are read as strings so that no value passes through float64.

type recordsFile struct {
	DataDate string         `yaml:"data_date"`
	Accounts []accountInput `yaml:"accounts"`
}

type accountInput struct {
	WBSCode string        `yaml:"wbs_code"`
	Name    string        `yaml:"name"`
	Records []recordInput `yaml:"records"`
}

type recordInput struct {
	DataDate string `yaml:"data_date"`
	Period   string `yaml:"period"`
	PV       string `yaml:"pv"`
	EV       string `yaml:"ev"`
	AC       string `yaml:"ac"`
	BAC      string `yaml:"bac"`
}

type registerFile struct {
	Risks []riskInput `yaml:"risks"`
}

type riskInput struct {
	Title       string           `yaml:"title"`
	Status      string           `yaml:"status"`
	Probability int              `yaml:"probability"`
	Impact      int              `yaml:"impact"`
	Residual    *assessmentInput `yaml:"residual"`
	Cost        string           `yaml:"cost"`
	Optimistic  string           `yaml:"optimistic"`
	Pessimistic string           `yaml:"pessimistic"`
}

type assessmentInput struct {
	Probability int `yaml:"probability"`
	Impact      int `yaml:"impact"`
}

// offlineAccount is a control account read from a records file, with its
// records in append order
type offlineAccount struct {
	code    types.WBSCode
	name    string
	records []*model.EVMRecord
}

func readYAML(path string, v any) error {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return goerr.Wrap(types.ErrInvalidArgument, "failed to parse YAML input",
			goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	return nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, goerr.Wrap(types.ErrInvalidArgument, "invalid amount",
			goerr.V(types.FieldKey, field), goerr.V(types.ValueKey, s))
	}
	return d, nil
}

func parseDay(field, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(types.ErrInvalidArgument, "date must be YYYY-MM-DD",
			goerr.V(types.FieldKey, field), goerr.V(types.ValueKey, s))
	}
	return t, nil
}

func (in recordInput) toRecord(accountID types.ControlAccountID) (*model.EVMRecord, error) {
	date, err := parseDay("data_date", in.DataDate)
	if err != nil {
		return nil, err
	}
	period, err := types.ParsePeriodType(strings.ToUpper(in.Period))
	if err != nil {
		return nil, err
	}

	rec := &model.EVMRecord{
		ID:               types.RecordID(accountID.String() + "@" + in.DataDate),
		ControlAccountID: accountID,
		DataDate:         date,
		PeriodType:       period,
	}
	for _, f := range []struct {
		name string
		src  string
		dst  *decimal.Decimal
	}{
		{"pv", in.PV, &rec.PV},
		{"ev", in.EV, &rec.EV},
		{"ac", in.AC, &rec.AC},
		{"bac", in.BAC, &rec.BAC},
	} {
		if *f.dst, err = parseAmount(f.name, f.src); err != nil {
			return nil, err
		}
	}

	if err := (evm.Input{PV: rec.PV, EV: rec.EV, AC: rec.AC, BAC: rec.BAC}).Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// loadRecords reads a records file. Records of one account must be listed in
// strictly increasing data date order, as the service requires on append.
func loadRecords(path string) (*recordsFile, []*offlineAccount, error) {
	var file recordsFile
	if err := readYAML(path, &file); err != nil {
		return nil, nil, err
	}

	seen := make(map[types.WBSCode]bool)
	accounts := make([]*offlineAccount, 0, len(file.Accounts))
	for _, a := range file.Accounts {
		code := types.WBSCode(a.WBSCode)
		if err := code.Validate(); err != nil {
			return nil, nil, err
		}
		if seen[code] {
			return nil, nil, goerr.Wrap(types.ErrAlreadyExists, "duplicate WBS code", goerr.V("wbs_code", code))
		}
		seen[code] = true

		account := &offlineAccount{code: code, name: a.Name}
		for _, in := range a.Records {
			rec, err := in.toRecord(types.ControlAccountID(code.String()))
			if err != nil {
				return nil, nil, goerr.Wrap(err, "invalid record", goerr.V("wbs_code", code))
			}
			if err := evm.Accumulate(account.records, rec); err != nil {
				return nil, nil, goerr.Wrap(err, "records must be in increasing date order", goerr.V("wbs_code", code))
			}
			account.records = append(account.records, rec)
		}
		accounts = append(accounts, account)
	}

	slices.SortFunc(accounts, func(a, b *offlineAccount) int {
		return a.code.Compare(b.code)
	})
	return &file, accounts, nil
}

func (in riskInput) toRisk(id int64) (*model.Risk, error) {
	status := types.RiskStatus(strings.ToUpper(in.Status)).Normalize()
	if !status.IsValid() {
		return nil, goerr.Wrap(types.ErrInvalidArgument, "invalid risk status", goerr.V(types.StatusKey, in.Status))
	}

	risk := &model.Risk{
		ID:     id,
		Title:  in.Title,
		Status: status,
	}

	if in.Probability != 0 || in.Impact != 0 {
		a := &model.Assessment{Probability: types.Score(in.Probability), Impact: types.Score(in.Impact)}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		risk.Inherent = a
	}
	if in.Residual != nil {
		a := &model.Assessment{Probability: types.Score(in.Residual.Probability), Impact: types.Score(in.Residual.Impact)}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		risk.Residual = a
	}

	var err error
	if risk.CostImpact, err = parseAmount("cost", in.Cost); err != nil {
		return nil, err
	}
	if risk.CostImpact.IsNegative() {
		return nil, goerr.Wrap(types.ErrInvalidArgument, "cost must not be negative", goerr.V(types.ValueKey, in.Cost))
	}

	if in.Optimistic != "" || in.Pessimistic != "" {
		var cr model.CostRange
		if cr.Optimistic, err = parseAmount("optimistic", in.Optimistic); err != nil {
			return nil, err
		}
		if cr.Pessimistic, err = parseAmount("pessimistic", in.Pessimistic); err != nil {
			return nil, err
		}
		if cr.Optimistic.IsNegative() || cr.Optimistic.GreaterThan(risk.CostImpact) || cr.Pessimistic.LessThan(risk.CostImpact) {
			return nil, goerr.Wrap(types.ErrInvalidArgument, "cost range must satisfy 0 <= optimistic <= cost <= pessimistic",
				goerr.V("title", in.Title))
		}
		risk.CostRange = &cr
	}
	return risk, nil
}

func loadRegister(path string) ([]*model.Risk, error) {
	var file registerFile
	if err := readYAML(path, &file); err != nil {
		return nil, err
	}

	risks := make([]*model.Risk, 0, len(file.Risks))
	for i, in := range file.Risks {
		risk, err := in.toRisk(int64(i + 1))
		if err != nil {
			return nil, goerr.Wrap(err, "invalid risk", goerr.V("index", i), goerr.V("title", in.Title))
		}
		risks = append(risks, risk)
	}
	return risks, nil
}
