package models

import "time"

// ModerableListing - общая способность листинга проходить модерацию.
// Job и Property структурно разные, но жизненный цикл
// pending -> approved/rejected у них один; машина состояний написана
// один раз в сервисе модерации поверх этого интерфейса.
type ModerableListing interface {
	GetID() string
	Kind() ListingKind
	Title() string
	OwnerID() string
	GetStatus() ListingStatus
	SetStatus(ListingStatus)
	SetModeration(adminID string, at time.Time, rejectionReason string)
}

func (j *Job) GetID() string            { return j.ID }
func (j *Job) Kind() ListingKind        { return ListingKindJob }
func (j *Job) Title() string            { return j.JobTitle }
func (j *Job) OwnerID() string          { return j.PostedByID }
func (j *Job) GetStatus() ListingStatus { return j.Status }
func (j *Job) SetStatus(s ListingStatus) { j.Status = s }

func (j *Job) SetModeration(adminID string, at time.Time, rejectionReason string) {
	j.ApprovedByID = &adminID
	j.ApprovalDate = &at
	j.RejectionReason = rejectionReason
}

func (p *Property) GetID() string            { return p.ID }
func (p *Property) Kind() ListingKind        { return ListingKindProperty }
func (p *Property) Title() string            { return p.PropertyTitle }
func (p *Property) OwnerID() string          { return p.PostedByID }
func (p *Property) GetStatus() ListingStatus { return p.Status }
func (p *Property) SetStatus(s ListingStatus) { p.Status = s }

func (p *Property) SetModeration(adminID string, at time.Time, rejectionReason string) {
	p.ApprovedByID = &adminID
	p.ApprovalDate = &at
	p.RejectionReason = rejectionReason
}
