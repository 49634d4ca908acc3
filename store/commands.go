package store

// CommandType is the wire name of a command.
type CommandType string

const (
	LoginType             CommandType = "LOGIN"
	LogoutType            CommandType = "LOGOUT"
	SetCurrentResumeType  CommandType = "SET_CURRENT_RESUME"
	AddResumeType         CommandType = "ADD_RESUME"
	UpdateResumeType      CommandType = "UPDATE_RESUME"
	DeleteResumeType      CommandType = "DELETE_RESUME"
	AddSectionType        CommandType = "ADD_SECTION"
	UpdateSectionType     CommandType = "UPDATE_SECTION"
	DeleteSectionType     CommandType = "DELETE_SECTION"
	ReorderSectionsType   CommandType = "REORDER_SECTIONS"
	TogglePreviewModeType CommandType = "TOGGLE_PREVIEW_MODE"
)

type Command interface {
	Type() CommandType
}

type Authenticate struct {
	User UserRef
}

type Deauthenticate struct{}

// SetCurrentDocument points the session at a document. An empty ID clears
// the pointer.
type SetCurrentDocument struct {
	ID string
}

type CreateDocument struct {
	Title string
}

type UpdateDocument struct {
	ID    string
	Title string
}

type DeleteDocument struct {
	ID string
}

// AddSection appends Section to the current document. An empty Section.ID is
// filled from the store's generator; Order is always overwritten.
type AddSection struct {
	Section Section
}

type UpdateSection struct {
	Section Section
}

type DeleteSection struct {
	ID string
}

// ReorderSections carries the complete new sequence of section ids.
type ReorderSections struct {
	IDs []string
}

type TogglePreviewMode struct{}

func (Authenticate) Type() CommandType       { return LoginType }
func (Deauthenticate) Type() CommandType     { return LogoutType }
func (SetCurrentDocument) Type() CommandType { return SetCurrentResumeType }
func (CreateDocument) Type() CommandType     { return AddResumeType }
func (UpdateDocument) Type() CommandType     { return UpdateResumeType }
func (DeleteDocument) Type() CommandType     { return DeleteResumeType }
func (AddSection) Type() CommandType         { return AddSectionType }
func (UpdateSection) Type() CommandType      { return UpdateSectionType }
func (DeleteSection) Type() CommandType      { return DeleteSectionType }
func (ReorderSections) Type() CommandType    { return ReorderSectionsType }
func (TogglePreviewMode) Type() CommandType  { return TogglePreviewModeType }
