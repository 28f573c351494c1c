package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketapi/internal/logger"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created last; its presence means the schema is complete.
const sentinelTable = "public.audit_events"

var steps = []migrationStep{
	{
		Name: "create_table_frameworks",
		SQL: `CREATE TABLE IF NOT EXISTS frameworks (
  id     BIGSERIAL PRIMARY KEY,
  slug   TEXT      NOT NULL UNIQUE,
  name   TEXT      NOT NULL DEFAULT '',
  status TEXT      NOT NULL DEFAULT 'open'
);`,
	},
	{
		Name: "create_table_lots",
		SQL: `CREATE TABLE IF NOT EXISTS lots (
  id           BIGSERIAL PRIMARY KEY,
  framework_id BIGINT    NOT NULL REFERENCES frameworks (id),
  slug         TEXT      NOT NULL,
  UNIQUE (framework_id, slug)
);`,
	},
	{
		Name: "create_table_domains",
		SQL: `CREATE TABLE IF NOT EXISTS domains (
  id              BIGSERIAL     PRIMARY KEY,
  name            TEXT          NOT NULL UNIQUE,
  price_minimum   NUMERIC(10,2) NOT NULL DEFAULT 0,
  price_maximum   NUMERIC(10,2) NOT NULL DEFAULT 0,
  criteria_needed INT           NOT NULL DEFAULT 0
);`,
	},
	{
		Name: "create_table_domain_criteria",
		SQL: `CREATE TABLE IF NOT EXISTS domain_criteria (
  id          BIGSERIAL PRIMARY KEY,
  domain_id   BIGINT    NOT NULL REFERENCES domains (id),
  name        TEXT      NOT NULL,
  description TEXT      NOT NULL DEFAULT '',
  essential   BOOLEAN   NOT NULL DEFAULT false
);`,
	},
	{
		Name: "create_table_suppliers",
		SQL: `CREATE TABLE IF NOT EXISTS suppliers (
  id         BIGSERIAL   PRIMARY KEY,
  code       BIGINT      NOT NULL UNIQUE,
  name       TEXT        NOT NULL,
  abn        TEXT        NOT NULL DEFAULT '',
  status     TEXT        NOT NULL DEFAULT 'complete',
  data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_supplier_frameworks",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_frameworks (
  supplier_id  BIGINT NOT NULL REFERENCES suppliers (id),
  framework_id BIGINT NOT NULL REFERENCES frameworks (id),
  PRIMARY KEY (supplier_id, framework_id)
);`,
	},
	{
		Name: "create_table_supplier_domains",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_domains (
  id          BIGSERIAL PRIMARY KEY,
  supplier_id BIGINT    NOT NULL REFERENCES suppliers (id),
  domain_id   BIGINT    NOT NULL REFERENCES domains (id),
  status      TEXT      NOT NULL DEFAULT 'unassessed',
  UNIQUE (supplier_id, domain_id)
);`,
	},
	{
		Name: "create_table_applications",
		SQL: `CREATE TABLE IF NOT EXISTS applications (
  id            BIGSERIAL   PRIMARY KEY,
  supplier_code BIGINT      NULL,
  type          TEXT        NOT NULL DEFAULT 'new',
  status        TEXT        NOT NULL DEFAULT 'saved',
  data          JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id             BIGSERIAL   PRIMARY KEY,
  name           TEXT        NOT NULL,
  email_address  TEXT        NOT NULL UNIQUE,
  role           TEXT        NOT NULL,
  active         BOOLEAN     NOT NULL DEFAULT true,
  supplier_code  BIGINT      NULL REFERENCES suppliers (code),
  application_id BIGINT      NULL REFERENCES applications (id),
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_briefs",
		SQL: `CREATE TABLE IF NOT EXISTS briefs (
  id           BIGSERIAL   PRIMARY KEY,
  lot_id       BIGINT      NOT NULL REFERENCES lots (id),
  data         JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  published_at TIMESTAMPTZ NULL,
  closed_at    TIMESTAMPTZ NULL,
  withdrawn_at TIMESTAMPTZ NULL
);`,
	},
	{
		Name: "create_table_brief_users",
		SQL: `CREATE TABLE IF NOT EXISTS brief_users (
  brief_id BIGINT NOT NULL REFERENCES briefs (id),
  user_id  BIGINT NOT NULL REFERENCES users (id),
  PRIMARY KEY (brief_id, user_id)
);`,
	},
	{
		Name: "create_table_brief_responses",
		SQL: `CREATE TABLE IF NOT EXISTS brief_responses (
  id            BIGSERIAL   PRIMARY KEY,
  brief_id      BIGINT      NOT NULL REFERENCES briefs (id),
  supplier_code BIGINT      NOT NULL REFERENCES suppliers (code),
  data          JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  withdrawn_at  TIMESTAMPTZ NULL
);`,
	},
	{
		Name: "create_index_brief_responses_brief_supplier",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_brief_responses_brief_supplier ON brief_responses (brief_id, supplier_code);`,
	},
	{
		Name: "create_table_brief_response_contacts",
		SQL: `CREATE TABLE IF NOT EXISTS brief_response_contacts (
  id            BIGSERIAL PRIMARY KEY,
  brief_id      BIGINT    NOT NULL REFERENCES briefs (id),
  supplier_code BIGINT    NOT NULL REFERENCES suppliers (code),
  email_address TEXT      NOT NULL,
  UNIQUE (brief_id, supplier_code)
);`,
	},
	{
		Name: "create_table_brief_assessors",
		SQL: `CREATE TABLE IF NOT EXISTS brief_assessors (
  id             BIGSERIAL PRIMARY KEY,
  brief_id       BIGINT    NOT NULL REFERENCES briefs (id),
  user_id        BIGINT    NULL REFERENCES users (id),
  email_address  TEXT      NULL,
  view_day_rates BOOLEAN   NOT NULL DEFAULT false
);`,
	},
	{
		Name: "create_table_brief_questions",
		SQL: `CREATE TABLE IF NOT EXISTS brief_questions (
  id            BIGSERIAL   PRIMARY KEY,
  brief_id      BIGINT      NOT NULL REFERENCES briefs (id),
  supplier_code BIGINT      NOT NULL REFERENCES suppliers (code),
  data          JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_brief_clarification_questions",
		SQL: `CREATE TABLE IF NOT EXISTS brief_clarification_questions (
  id           BIGSERIAL   PRIMARY KEY,
  brief_id     BIGINT      NOT NULL REFERENCES briefs (id),
  user_id      BIGINT      NOT NULL REFERENCES users (id),
  question     TEXT        NOT NULL,
  answer       TEXT        NOT NULL,
  published_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_brief_assessments",
		SQL: `CREATE TABLE IF NOT EXISTS brief_assessments (
  brief_id           BIGINT NOT NULL REFERENCES briefs (id),
  supplier_domain_id BIGINT NOT NULL REFERENCES supplier_domains (id),
  PRIMARY KEY (brief_id, supplier_domain_id)
);`,
	},
	{
		Name: "create_table_teams",
		SQL: `CREATE TABLE IF NOT EXISTS teams (
  id            BIGSERIAL   PRIMARY KEY,
  name          TEXT        NOT NULL DEFAULT '',
  email_address TEXT        NOT NULL DEFAULT '',
  status        TEXT        NOT NULL DEFAULT 'created',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_team_members",
		SQL: `CREATE TABLE IF NOT EXISTS team_members (
  id           BIGSERIAL PRIMARY KEY,
  team_id      BIGINT    NOT NULL REFERENCES teams (id),
  user_id      BIGINT    NOT NULL UNIQUE REFERENCES users (id),
  is_team_lead BOOLEAN   NOT NULL DEFAULT false
);`,
	},
	{
		Name: "create_table_team_member_permissions",
		SQL: `CREATE TABLE IF NOT EXISTS team_member_permissions (
  team_member_id BIGINT NOT NULL REFERENCES team_members (id) ON DELETE CASCADE,
  permission     TEXT   NOT NULL,
  PRIMARY KEY (team_member_id, permission)
);`,
	},
	{
		Name: "create_table_evidence",
		SQL: `CREATE TABLE IF NOT EXISTS evidence (
  id            BIGSERIAL   PRIMARY KEY,
  domain_id     BIGINT      NOT NULL REFERENCES domains (id),
  supplier_code BIGINT      NOT NULL REFERENCES suppliers (code),
  brief_id      BIGINT      NULL REFERENCES briefs (id),
  user_id       BIGINT      NULL REFERENCES users (id),
  data          JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  submitted_at  TIMESTAMPTZ NULL,
  approved_at   TIMESTAMPTZ NULL,
  rejected_at   TIMESTAMPTZ NULL
);`,
	},
	{
		Name: "create_table_evidence_assessments",
		SQL: `CREATE TABLE IF NOT EXISTS evidence_assessments (
  id          BIGSERIAL   PRIMARY KEY,
  evidence_id BIGINT      NOT NULL REFERENCES evidence (id) ON DELETE CASCADE,
  user_id     BIGINT      NULL REFERENCES users (id),
  status      TEXT        NOT NULL,
  data        JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_case_studies",
		SQL: `CREATE TABLE IF NOT EXISTS case_studies (
  id            BIGSERIAL   PRIMARY KEY,
  supplier_code BIGINT      NOT NULL REFERENCES suppliers (code),
  data          JSONB       NOT NULL DEFAULT '{}'::jsonb,
  status        TEXT        NOT NULL DEFAULT 'unassessed',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_case_study_assessments",
		SQL: `CREATE TABLE IF NOT EXISTS case_study_assessments (
  id            BIGSERIAL   PRIMARY KEY,
  case_study_id BIGINT      NOT NULL REFERENCES case_studies (id),
  user_id       BIGINT      NOT NULL REFERENCES users (id),
  status        TEXT        NOT NULL,
  comment       TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_case_study_assessment_domain_criteria",
		SQL: `CREATE TABLE IF NOT EXISTS case_study_assessment_domain_criteria (
  case_study_assessment_id BIGINT NOT NULL REFERENCES case_study_assessments (id) ON DELETE CASCADE,
  domain_criteria_id       BIGINT NOT NULL REFERENCES domain_criteria (id),
  PRIMARY KEY (case_study_assessment_id, domain_criteria_id)
);`,
	},
	{
		Name: "create_table_audit_events",
		SQL: `CREATE TABLE IF NOT EXISTS audit_events (
  id          BIGSERIAL   PRIMARY KEY,
  type        TEXT        NOT NULL,
  "user"      TEXT        NOT NULL DEFAULT '',
  data        JSONB       NOT NULL DEFAULT '{}'::jsonb,
  object_type TEXT        NOT NULL DEFAULT '',
  object_id   BIGINT      NOT NULL DEFAULT 0,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_audit_events_object",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_events_object ON audit_events (type, object_type, object_id);`,
	},
}

// EnsureMigrated creates the schema unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logger.Logger, dbHost string) error {
	start := time.Now()
	log = log.Component("database").WithFields(map[string]any{"db_host": dbHost})

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists)
	if err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"reason", "schema already exists",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success", "status", "success", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
