package launch

import "github.com/holiman/uint256"

type actionKind uint8

const (
	actionSell actionKind = iota
	actionTransfer
)

func (k actionKind) capPercent() uint64 {
	if k == actionTransfer {
		return TransferLimitPercent
	}
	return SellLimitPercent
}

func (k actionKind) limitErr() error {
	if k == actionTransfer {
		return ErrExceedsTransferLimit
	}
	return ErrExceedsSellLimit
}

// holdingCap returns the largest quantity the account may move today:
// floor(holding * percent / 100).
func holdingCap(holding uint64, percent uint64) (uint64, error) {
	scaled, err := wideMul(uint256.NewInt(holding), uint256.NewInt(percent))
	if err != nil {
		return 0, err
	}
	return asUint64(scaled.Div(scaled, uint256.NewInt(100)))
}

// checkAndRecord enforces the one-action-per-cycle rule and the percentage-of
// holdings cap for the requested action, then marks the record as used for
// today. The caller persists the record together with the balance effects so
// both commit or neither does.
func checkAndRecord(record *ActionRecord, today uint64, kind actionKind, holding, requestedQty uint64) error {
	if record.LastActionDay == today {
		return ErrActionAlreadyPerformed
	}
	allowed, err := holdingCap(holding, kind.capPercent())
	if err != nil {
		return err
	}
	if requestedQty > allowed {
		return kind.limitErr()
	}
	record.LastActionDay = today
	return nil
}
