package model

import "time"

// AuditType names the kind of change recorded in an AuditEvent.
type AuditType string

const (
	AuditCreateBriefResponse              AuditType = "create_brief_response"
	AuditUpdateBriefResponse              AuditType = "update_brief_response"
	AuditNotifyBriefResponders            AuditType = "notify_brief_responders"
	AuditCreateBriefClarificationQuestion AuditType = "create_brief_clarification_question"
	AuditEvidenceDraftDeleted             AuditType = "evidence_draft_deleted"
	AuditTeamLeadAdded                    AuditType = "team_lead_added"
	AuditTeamMemberAdded                  AuditType = "team_member_added"
	AuditUpdateTeam                       AuditType = "update_team"
	AuditSentClosedBriefEmail             AuditType = "sent_closed_brief_email"
	AuditCreateBrief                      AuditType = "create_brief"
	AuditUpdateBrief                      AuditType = "update_brief"
	AuditPublishBrief                     AuditType = "publish_brief"
	AuditCreateCaseStudyAssessment        AuditType = "create_case_study_assessment"
	AuditUpdateCaseStudyAssessment        AuditType = "update_case_study_assessment"
	AuditDeleteCaseStudyAssessment        AuditType = "delete_case_study_assessment"
	AuditUploadBriefResponseDocument      AuditType = "upload_brief_response_document"
	AuditUpdateBriefResponseContact       AuditType = "update_brief_response_contact"
	AuditCreateBriefAssessor              AuditType = "create_brief_assessor"
	AuditCompleteTeam                     AuditType = "complete_team"
)

// AuditEvent records who changed which object.
type AuditEvent struct {
	ID         int64          `json:"id"`
	Type       AuditType      `json:"type"`
	User       string         `json:"user"`
	Data       map[string]any `json:"data"`
	ObjectType string         `json:"object_type"`
	ObjectID   int64          `json:"object_id"`
	CreatedAt  time.Time      `json:"created_at"`
}
