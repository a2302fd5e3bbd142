package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/evm"
	"google.golang.org/api/iterator"
)

type evmRecordDocument struct {
	ID               string    `firestore:"id"`
	ControlAccountID string    `firestore:"control_account_id"`
	DataDate         time.Time `firestore:"data_date"`
	PeriodType       string    `firestore:"period_type"`
	PV               string    `firestore:"pv"`
	EV               string    `firestore:"ev"`
	AC               string    `firestore:"ac"`
	BAC              string    `firestore:"bac"`
	CumulativePV     string    `firestore:"cumulative_pv"`
	CumulativeEV     string    `firestore:"cumulative_ev"`
	CumulativeAC     string    `firestore:"cumulative_ac"`
	CreatedAt        time.Time `firestore:"created_at"`
}

func newEVMRecordDocument(r *model.EVMRecord) *evmRecordDocument {
	return &evmRecordDocument{
		ID:               r.ID.String(),
		ControlAccountID: r.ControlAccountID.String(),
		DataDate:         r.DataDate,
		PeriodType:       r.PeriodType.String(),
		PV:               r.PV.String(),
		EV:               r.EV.String(),
		AC:               r.AC.String(),
		BAC:              r.BAC.String(),
		CumulativePV:     r.CumulativePV.String(),
		CumulativeEV:     r.CumulativeEV.String(),
		CumulativeAC:     r.CumulativeAC.String(),
		CreatedAt:        r.CreatedAt,
	}
}

func (d *evmRecordDocument) toModel() (*model.EVMRecord, error) {
	record := &model.EVMRecord{
		ID:               types.RecordID(d.ID),
		ControlAccountID: types.ControlAccountID(d.ControlAccountID),
		DataDate:         d.DataDate,
		PeriodType:       types.PeriodType(d.PeriodType),
		CreatedAt:        d.CreatedAt,
	}

	var err error
	if record.PV, err = parseAmount("pv", d.PV); err != nil {
		return nil, err
	}
	if record.EV, err = parseAmount("ev", d.EV); err != nil {
		return nil, err
	}
	if record.AC, err = parseAmount("ac", d.AC); err != nil {
		return nil, err
	}
	if record.BAC, err = parseAmount("bac", d.BAC); err != nil {
		return nil, err
	}
	if record.CumulativePV, err = parseAmount("cumulative_pv", d.CumulativePV); err != nil {
		return nil, err
	}
	if record.CumulativeEV, err = parseAmount("cumulative_ev", d.CumulativeEV); err != nil {
		return nil, err
	}
	if record.CumulativeAC, err = parseAmount("cumulative_ac", d.CumulativeAC); err != nil {
		return nil, err
	}
	return record, nil
}

type evmRecordRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newEVMRecordRepository(client *firestore.Client) *evmRecordRepository {
	return &evmRecordRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *evmRecordRepository) recordsCollection() string {
	return CollectionName(r.collectionPrefix, CollectionEVMRecords)
}

// Append reads the latest record of the account and writes the new one in the
// same transaction, so two concurrent appends cannot both pass the ordering
// check.
func (r *evmRecordRepository) Append(ctx context.Context, record *model.EVMRecord) (*model.EVMRecord, error) {
	col := r.client.Collection(r.recordsCollection())
	var created *model.EVMRecord

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := col.Where("control_account_id", "==", record.ControlAccountID.String()).
			OrderBy("data_date", firestore.Desc).
			Limit(1)
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to get latest EVM record")
		}

		var existing []*model.EVMRecord
		for _, doc := range docs {
			var latestDoc evmRecordDocument
			if err := doc.DataTo(&latestDoc); err != nil {
				return goerr.Wrap(err, "failed to unmarshal EVM record", goerr.V("docID", doc.Ref.ID))
			}
			latest, err := latestDoc.toModel()
			if err != nil {
				return err
			}
			existing = append(existing, latest)
		}

		next := *record
		if err := evm.Accumulate(existing, &next); err != nil {
			return err
		}
		next.CreatedAt = time.Now().UTC()

		if err := tx.Create(col.Doc(next.ID.String()), newEVMRecordDocument(&next)); err != nil {
			return goerr.Wrap(err, "failed to create EVM record")
		}
		created = &next
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append EVM record",
			goerr.V("control_account_id", record.ControlAccountID), goerr.V("id", record.ID))
	}

	return created, nil
}

func (r *evmRecordRepository) List(ctx context.Context, accountID types.ControlAccountID) ([]*model.EVMRecord, error) {
	iter := r.client.Collection(r.recordsCollection()).
		Where("control_account_id", "==", accountID.String()).
		OrderBy("data_date", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	records := make([]*model.EVMRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate EVM records", goerr.V("control_account_id", accountID))
		}

		var recordDoc evmRecordDocument
		if err := doc.DataTo(&recordDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal EVM record", goerr.V("docID", doc.Ref.ID))
		}
		record, err := recordDoc.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}
