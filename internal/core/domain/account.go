package domain

import "time"

// CredentialHistoryLimit caps how many former credential hashes are retained per account.
const CredentialHistoryLimit = 5

// Account mirrors the persisted representation in the accounts collection.
type Account struct {
	Email              string
	Mobile             string
	Name               string
	Role               Role
	CredentialHash     string
	CredentialAlgo     string
	CredentialHistory  []string
	CredentialChangedAt time.Time
	SecurityQuestionID string
	SecurityAnswerHash string
	FailedAttempts     int
	LockedUntil        *time.Time
	RegisteredAt       time.Time
	LastLogin          *time.Time
}

// Sanitized returns a copy safe to hand back to callers: no credential or answer material.
func (a Account) Sanitized() Account {
	a.CredentialHash = ""
	a.CredentialHistory = nil
	a.SecurityAnswerHash = ""
	return a
}

// PushCredentialHistory appends a former hash, evicting the oldest beyond the limit.
func (a *Account) PushCredentialHistory(hash string) {
	if hash == "" {
		return
	}
	a.CredentialHistory = append(a.CredentialHistory, hash)
	if len(a.CredentialHistory) > CredentialHistoryLimit {
		a.CredentialHistory = a.CredentialHistory[len(a.CredentialHistory)-CredentialHistoryLimit:]
	}
}

// SecurityQuestion is a fixed recovery question offered at registration.
type SecurityQuestion struct {
	ID   string
	Text string
}

var securityQuestions = []SecurityQuestion{
	{ID: "first_pet", Text: "What was the name of your first pet?"},
	{ID: "birth_city", Text: "In what city were you born?"},
	{ID: "mother_maiden", Text: "What is your mother's maiden name?"},
	{ID: "first_school", Text: "What was the name of your first school?"},
	{ID: "favorite_teacher", Text: "Who was your favorite teacher?"},
}

// SecurityQuestions returns the catalog of recovery questions.
func SecurityQuestions() []SecurityQuestion {
	out := make([]SecurityQuestion, len(securityQuestions))
	copy(out, securityQuestions)
	return out
}

// SecurityQuestionByID resolves a question id, reporting whether it exists.
func SecurityQuestionByID(id string) (SecurityQuestion, bool) {
	for _, q := range securityQuestions {
		if q.ID == id {
			return q, true
		}
	}
	return SecurityQuestion{}, false
}
