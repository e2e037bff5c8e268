package chain

import "fmt"

// ActionKind tags a witness action. The numeric values are the wire values.
type ActionKind uint8

const (
	KindSubmit        ActionKind = 0
	KindApprove       ActionKind = 1
	KindCancel        ActionKind = 2
	KindUpdate        ActionKind = 3
	KindSendToExecute ActionKind = 4
	KindBook          ActionKind = 5
)

func (k ActionKind) String() string {
	switch k {
	case KindSubmit:
		return "Submit"
	case KindApprove:
		return "Approve"
	case KindCancel:
		return "Cancel"
	case KindUpdate:
		return "Update"
	case KindSendToExecute:
		return "SendToExecute"
	case KindBook:
		return "Book"
	default:
		return fmt.Sprintf("ActionKind(%d)", uint8(k))
	}
}

// Action is the payload of a witness. The set of implementations is closed:
// Submit, Approve, Update, Cancel, SendToExecute and Book.
type Action interface {
	Kind() ActionKind
	sealed()
}

// Submit is the first action on a trade. It binds the details hash and
// names the single approver.
type Submit struct {
	DetailsHash string
	RequesterID string
	ApproverID  string
}

// Approve ratifies the current pending details.
type Approve struct{}

// Update supersedes the current details and voids any standing approval.
type Update struct {
	DetailsHash string
}

// Cancel terminates the trade.
type Cancel struct{}

// SendToExecute marks an approved trade as sent to the counterparty.
type SendToExecute struct{}

// Book terminates the trade with its final strike.
type Book struct {
	Strike uint64
}

func (Submit) Kind() ActionKind        { return KindSubmit }
func (Approve) Kind() ActionKind       { return KindApprove }
func (Update) Kind() ActionKind        { return KindUpdate }
func (Cancel) Kind() ActionKind        { return KindCancel }
func (SendToExecute) Kind() ActionKind { return KindSendToExecute }
func (Book) Kind() ActionKind          { return KindBook }

func (Submit) sealed()        {}
func (Approve) sealed()       {}
func (Update) sealed()        {}
func (Cancel) sealed()        {}
func (SendToExecute) sealed() {}
func (Book) sealed()          {}

// DetailsHash returns the details hash carried by a Submit or Update.
func DetailsHash(a Action) (string, bool) {
	switch a := a.(type) {
	case Submit:
		return a.DetailsHash, true
	case Update:
		return a.DetailsHash, true
	default:
		return "", false
	}
}
