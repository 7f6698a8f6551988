package submission

import (
	"errors"
	"strings"
)

var (
	// ErrNotRobotUnconfirmed is returned when the applicant has not ticked the
	// not-a-robot confirmation.
	ErrNotRobotUnconfirmed = errors.New("please confirm you are not a robot")

	// ErrNoAttachments is returned when a submission carries no files.
	ErrNoAttachments = errors.New("please select at least one file to upload")
)

// Form holds the applicant-entered text fields.
type Form struct {
	Name          string `yaml:"name" json:"name"`
	Email         string `yaml:"email" json:"email"`
	Contact       string `yaml:"contact" json:"contact"`
	Query         string `yaml:"query" json:"query"`
	ConsentText   string `yaml:"consent_text" json:"consent_text"`
	StudyInfoText string `yaml:"study_info_text" json:"study_info_text"`
	NotRobot      bool   `yaml:"not_robot" json:"not_robot"`
}

// Submission is a form together with the files attached to it.
type Submission struct {
	Form        Form         `yaml:"form" json:"form"`
	Attachments []Attachment `yaml:"attachments" json:"attachments"`
}

// Validate checks the submission the same way the form does before
// assembling anything.
func (s *Submission) Validate() error {
	if !s.Form.NotRobot {
		return ErrNotRobotUnconfirmed
	}
	if len(s.Attachments) == 0 {
		return ErrNoAttachments
	}
	return nil
}

// FieldText joins the short identification fields in the order they appear on
// the cover page.
func (f Form) FieldText() string {
	return strings.Join([]string{f.Name, f.Email, f.Contact, f.Query}, " ")
}
