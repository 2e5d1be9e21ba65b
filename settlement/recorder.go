/*
recorder.go - Settlement audit trail

PURPOSE:
  Writes one settlement record per resolved contributor. The gift's
  display name is snapshotted onto each record so a later rename never
  rewrites what the contributor was told at settlement time.
*/
package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recorder persists the audit rows for a settlement run.
type Recorder struct {
	records RecordStore
}

func NewRecorder(records RecordStore) *Recorder {
	return &Recorder{records: records}
}

// Record writes one row per refunded or credited outcome and returns the
// generated ids. Failed outcomes produce no settlement record; they live
// in the failure log instead.
func (r *Recorder) Record(ctx context.Context, gift *Gift, outcomes []Outcome) ([]SettlementID, error) {
	now := time.Now().UTC()
	records := make([]SettlementRecord, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Kind == OutcomeFailed {
			continue
		}
		disposition := DispositionRefund
		if o.Kind == OutcomeCredited {
			disposition = DispositionCredit
		}
		records = append(records, SettlementRecord{
			ID:             SettlementID(uuid.NewString()),
			GiftID:         gift.ID,
			Amount:         o.Amount,
			Disposition:    disposition,
			RecipientName:  o.Contribution.ContributorName,
			RecipientEmail: o.Contribution.ContributorEmail,
			GiftName:       gift.Name,
			Status:         SettlementStatusCompleted,
			CreatedAt:      now,
		})
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := r.records.AppendSettlementRecords(ctx, records); err != nil {
		return nil, err
	}

	ids := make([]SettlementID, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids, nil
}
