package model

// QuestionPair — авторский вопрос владельца и эталонный ответ.
// Ответ не должен попадать ни в одну выдачу, кроме первоначальной записи.
type QuestionPair struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// VerificationQuestion — набор проверочных вопросов найденного предмета.
// Ровно одна запись на предмет (uniqueIndex по ItemID); создаётся в одной
// транзакции с самим предметом.
type VerificationQuestion struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	ItemID string `gorm:"uniqueIndex;size:24;not null" json:"item_id"`

	Item *Item `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Questions []QuestionPair `gorm:"serializer:json" json:"questions"`
}

// PublicQuestion — вопрос без эталонного ответа, как его видит заявитель.
type PublicQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// PublicQuestions отдаёт список вопросов со снятыми ответами.
func (vq *VerificationQuestion) PublicQuestions() []PublicQuestion {
	out := make([]PublicQuestion, 0, len(vq.Questions))
	for _, q := range vq.Questions {
		out = append(out, PublicQuestion{ID: q.ID, Question: q.Question})
	}
	return out
}
