package order

// ActionKind tells the adapters which reply and side notification to send.
type ActionKind int

const (
	// ActionNoOp means the fragment was recorded and nothing else happens yet.
	ActionNoOp ActionKind = iota
	ActionPromptForContactAndLocation
	ActionNoMatch
	ActionReturnedToMenu
	ActionOrderReady
)

func (k ActionKind) String() string {
	switch k {
	case ActionNoOp:
		return "noop"
	case ActionPromptForContactAndLocation:
		return "prompt_contact_location"
	case ActionNoMatch:
		return "no_match"
	case ActionReturnedToMenu:
		return "returned_to_menu"
	case ActionOrderReady:
		return "order_ready"
	}
	return "unknown"
}

// Action is the result of every Aggregator operation.
// Order is set only when Kind is ActionOrderReady; Service only for prompts.
type Action struct {
	Kind    ActionKind
	Service ServiceKind
	Order   *CompletedOrder
}
