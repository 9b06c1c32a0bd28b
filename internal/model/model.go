// Package model содержит доменные сущности сервиса возвратов.
package model

// Stage описывает этап жизненного цикла возврата.
type Stage string

const (
	StageInitiated       Stage = "initiated"
	StageGatewayCredited Stage = "gateway_credited"
	StageBankCredited    Stage = "bank_credited"
	StagePosted          Stage = "posted"
)

// stageOrder задаёт единственный допустимый порядок этапов.
var stageOrder = []Stage{
	StageInitiated,
	StageGatewayCredited,
	StageBankCredited,
	StagePosted,
}

// Stages возвращает копию упорядоченного списка этапов.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

func (s Stage) index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid сообщает, является ли значение одним из известных этапов.
func (s Stage) Valid() bool {
	return s.index() >= 0
}

// Terminal сообщает, что этап последний и продвигать возврат дальше некуда.
func (s Stage) Terminal() bool {
	return s.index() == len(stageOrder)-1
}

// Next возвращает следующий этап. Для последнего этапа возвращается он сам и false.
func (s Stage) Next() (Stage, bool) {
	i := s.index()
	if i < 0 {
		panic("model: unknown refund stage " + string(s))
	}
	if i == len(stageOrder)-1 {
		return s, false
	}
	return stageOrder[i+1], true
}

// DeriveHistory возвращает префикс порядка этапов вплоть до stage включительно.
// Передача неизвестного этапа считается ошибкой программиста.
func DeriveHistory(stage Stage) []Stage {
	i := stage.index()
	if i < 0 {
		panic("model: unknown refund stage " + string(stage))
	}
	history := make([]Stage, i+1)
	copy(history, stageOrder[:i+1])
	return history
}

// Refund описывает возврат средств по транзакции и пройденные им этапы.
type Refund struct {
	ID       string  `json:"id"`
	TxnID    string  `json:"txn_id"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Stage    Stage   `json:"stage"`
	History  []Stage `json:"history"`
}

// Advance переводит возврат на следующий этап и дописывает его в историю.
// На последнем этапе ничего не меняется. Возвращает true, если этап сменился.
func (r *Refund) Advance() bool {
	next, ok := r.Stage.Next()
	if !ok {
		return false
	}
	r.Stage = next
	for _, st := range r.History {
		if st == next {
			return true
		}
	}
	r.History = append(r.History, next)
	return true
}

// Clone возвращает глубокую копию возврата.
func (r Refund) Clone() Refund {
	r.History = append([]Stage(nil), r.History...)
	return r
}

// DisputeNote содержит фиксированный текст заметки для эскалации.
const DisputeNote = "Attach proof of debit and merchant message. (PDF gen TODO)"

// Escalation содержит сводку по возврату для открытия спора.
type Escalation struct {
	Msg          string  `json:"msg"`
	RefundID     string  `json:"rid"`
	TxnID        string  `json:"txn_id"`
	Merchant     string  `json:"merchant"`
	Amount       float64 `json:"amount"`
	CurrentStage Stage   `json:"current_stage"`
	DisputeNote  string  `json:"dispute_note"`
}

// Bill описывает счёт. Логики поверх хранения у него нет.
type Bill struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}
