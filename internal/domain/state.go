package domain

// PaymentState is the reconstructed lifecycle state of a gateway payment.
// The state is never stored; it is replayed from the append-only trail in
// chronological order each time it is needed.
type PaymentState string

const (
	PaymentStateUnknown          PaymentState = "unknown"
	PaymentStateCreated          PaymentState = "created"
	PaymentStatePendingChallenge PaymentState = "pending_challenge"
	PaymentStateCaptured         PaymentState = "captured"
	PaymentStateDeclined         PaymentState = "declined"
	PaymentStateRefunded         PaymentState = "refunded"
	PaymentStateReversed         PaymentState = "reversed"
)

// Terminal reports whether no further transition is expected for the state
func (s PaymentState) Terminal() bool {
	switch s {
	case PaymentStateDeclined, PaymentStateRefunded, PaymentStateReversed:
		return true
	}
	return false
}

// ReconstructPaymentState replays gateway records for one payment id and
// returns the resulting state. Records MUST be ordered by created_at ASC.
// Only records the gateway actually answered (or sent) move the state:
// outbound attempts with no inbound companion leave it where it was.
func ReconstructPaymentState(records []GatewayRecord) PaymentState {
	state := PaymentStateUnknown

	for i := range records {
		rec := &records[i]

		switch rec.Direction {
		case DirectionOutbound:
			if rec.Operation == OperationPayment && state == PaymentStateUnknown {
				state = PaymentStateCreated
			}

		case DirectionInbound:
			state = applyInbound(state, rec)
		}
	}

	return state
}

func applyInbound(state PaymentState, rec *GatewayRecord) PaymentState {
	// Rejected callbacks and declined responses never advance a payment
	if rec.SigVerified != nil && !*rec.SigVerified {
		return state
	}

	fields := rec.Fields

	switch rec.Operation {
	case OperationPayment, OperationPayment3DS:
		if fields["pg_status"] != StatusOK {
			return PaymentStateDeclined
		}
		if fields["pg_redirect_url"] != "" {
			return PaymentStatePendingChallenge
		}
		return PaymentStateCaptured

	case OperationStatus:
		if fields["pg_status"] != StatusOK {
			return state
		}
		switch fields["pg_transaction_status"] {
		case "ok", "success":
			if fields["pg_captured"] == "0" {
				return PaymentStateCreated
			}
			return PaymentStateCaptured
		case "failed", "error":
			return PaymentStateDeclined
		case "refunded", "revoked":
			return PaymentStateRefunded
		case "reversed":
			return PaymentStateReversed
		case "pending", "waiting":
			return PaymentStatePendingChallenge
		}
		return state

	case OperationCancel:
		if fields["pg_status"] == StatusOK {
			return PaymentStateReversed
		}
		return state

	case OperationRevoke:
		if fields["pg_status"] == StatusOK {
			return PaymentStateRefunded
		}
		return state

	case OperationInboundResult:
		if fields["pg_result"] == "1" {
			return PaymentStateCaptured
		}
		return PaymentStateDeclined

	case OperationInboundCheck:
		// A check callback means the gateway is still deciding
		if state == PaymentStateUnknown || state == PaymentStateCreated {
			return PaymentStatePendingChallenge
		}
		return state
	}

	return state
}
