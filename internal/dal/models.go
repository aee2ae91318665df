package dal

import "time"

type (
	User struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		PasswordHash   string `json:"passwordHash"`
		DictionaryCode string `json:"dictionaryCode,omitempty"`
		ExternalID     string `json:"externalId,omitempty"`
		Provider       string `json:"provider,omitempty"`
	}

	// ExternalIdentity is the profile handed over by a social login provider.
	ExternalIdentity struct {
		Provider string
		ID       string
		Username string
	}

	Session struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		CreatedAt time.Time `json:"createdAt"`
	}

	WordEntry struct {
		ID      string `json:"id"`
		Word    string `json:"word"`
		Meaning string `json:"meaning"`
	}

	// Dictionary is stored under its secret code, so Code is filled in on read.
	Dictionary struct {
		Code      string      `json:"-"`
		Name      string      `json:"name"`
		Words     []WordEntry `json:"words"`
		CreatedAt time.Time   `json:"createdAt"`
	}
)

func (u User) HasDictionary() bool {
	return u.DictionaryCode != ""
}
