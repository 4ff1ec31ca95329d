package validation

import (
	"strings"
	"unicode/utf8"

	"synapse/internal/domain"
	"synapse/internal/dto"
	"synapse/internal/util"
)

const (
	maxRoomNameLength     = 100
	maxTitleLength        = 200
	maxDocumentNameLength = 255
	maxDocumentBytes      = 1 << 20
	maxAnswerLength       = 1000
	maxNotesLength        = 2000
	maxTimeLimitMinutes   = 180
)

var validThemes = map[string]bool{"light": true, "dark": true, "system": true}

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateID checks a path parameter that must be a UUID.
func (v *Validator) ValidateID(field, id string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
	} else if !util.IsUUID(id) {
		errors = append(errors, domain.NewInvalidFormatError(field, id))
	}
	return errors
}

func (v *Validator) ValidateCreateRoom(req dto.CreateRoomRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errors = append(errors, domain.NewMissingFieldError("name"))
	} else if utf8.RuneCountInString(name) > maxRoomNameLength {
		errors = append(errors, domain.NewOutOfRangeError("name", utf8.RuneCountInString(name), 1, maxRoomNameLength))
	}

	if req.Mode != "" && !domain.Mode(req.Mode).Valid() {
		errors = append(errors, domain.NewInvalidFormatError("mode", req.Mode))
	}

	return errors
}

func (v *Validator) ValidateJoinRoom(req dto.JoinRoomRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	code := domain.NormalizeRoomCode(req.Code)
	if code == "" {
		errors = append(errors, domain.NewMissingFieldError("code"))
	} else if !domain.IsValidRoomCode(code) {
		errors = append(errors, domain.NewInvalidFormatError("code", req.Code))
	}
	return errors
}

func (v *Validator) ValidateCreateDocument(req dto.CreateDocumentRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errors = append(errors, domain.NewMissingFieldError("name"))
	} else if len(name) > maxDocumentNameLength {
		errors = append(errors, domain.NewOutOfRangeError("name", len(name), 1, maxDocumentNameLength))
	}

	if strings.TrimSpace(req.Content) == "" {
		errors = append(errors, domain.NewMissingFieldError("content"))
	} else if len(req.Content) > maxDocumentBytes {
		errors = append(errors, domain.NewOutOfRangeError("content", len(req.Content), 1, maxDocumentBytes))
	}

	return errors
}

// ValidateCreateQuiz checks field shapes. A question count outside the
// generation range is clamped later rather than rejected.
func (v *Validator) ValidateCreateQuiz(req dto.CreateQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errors = append(errors, domain.NewMissingFieldError("title"))
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		errors = append(errors, domain.NewOutOfRangeError("title", utf8.RuneCountInString(title), 1, maxTitleLength))
	}

	errors = append(errors, v.ValidateID("document_id", req.DocumentID)...)

	if req.Difficulty != "" && !domain.Difficulty(req.Difficulty).Valid() {
		errors = append(errors, domain.NewInvalidFormatError("difficulty", req.Difficulty))
	}

	if req.TimeLimitMinutes != nil && (*req.TimeLimitMinutes < 0 || *req.TimeLimitMinutes > maxTimeLimitMinutes) {
		errors = append(errors, domain.NewOutOfRangeError("time_limit_minutes", *req.TimeLimitMinutes, 0, maxTimeLimitMinutes))
	}

	return errors
}

func (v *Validator) ValidateSelectAnswer(req dto.SelectAnswerRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	errors = append(errors, v.ValidateID("question_id", req.QuestionID)...)
	if len(req.Answer) > maxAnswerLength {
		errors = append(errors, domain.NewOutOfRangeError("answer", len(req.Answer), 0, maxAnswerLength))
	}
	return errors
}

func (v *Validator) ValidatePreferences(req dto.UpdatePreferencesRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if req.DefaultTimeLimit != nil && (*req.DefaultTimeLimit < 0 || *req.DefaultTimeLimit > maxTimeLimitMinutes) {
		errors = append(errors, domain.NewOutOfRangeError("default_time_limit", *req.DefaultTimeLimit, 0, maxTimeLimitMinutes))
	}
	if req.PreferredDifficulty != nil && !domain.Difficulty(*req.PreferredDifficulty).Valid() {
		errors = append(errors, domain.NewInvalidFormatError("preferred_difficulty", *req.PreferredDifficulty))
	}
	if req.Theme != nil && !validThemes[*req.Theme] {
		errors = append(errors, domain.NewInvalidFormatError("theme", *req.Theme))
	}
	return errors
}

func (v *Validator) ValidateBookmark(req dto.BookmarkRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if len(req.Notes) > maxNotesLength {
		errors = append(errors, domain.NewOutOfRangeError("notes", len(req.Notes), 0, maxNotesLength))
	}
	return errors
}
