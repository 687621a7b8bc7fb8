package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

func enumType(name string, labels ...string) string {
	quoted := make([]string, len(labels))
	for i, label := range labels {
		quoted[i] = "'" + label + "'"
	}
	return fmt.Sprintf(`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = '%s') THEN
			CREATE TYPE %s AS ENUM (%s);
		END IF;
	END
	$$;`, name, name, strings.Join(quoted, ", "))
}

func updatedAtTrigger(table string) string {
	return fmt.Sprintf(`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_%s_updated_at') THEN
			CREATE TRIGGER trg_%s_updated_at
				BEFORE UPDATE ON %s
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`, table, table, table)
}

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	enumType("service_request_status",
		"NEW", "ESTIMATION_IN_PROGRESS", "ESTIMATE_PENDING_APPROVAL", "ESTIMATE_APPROVED",
		"QUOTATION_IN_PROGRESS", "SCHEDULED", "IN_PROGRESS", "COMPLETED", "INVOICED", "PAID", "CANCELLED"),
	enumType("estimate_status",
		"DRAFT", "PENDING_MANAGER_APPROVAL", "REVISION_REQUESTED", "APPROVED", "REJECTED", "CONVERTED", "CANCELLED"),
	enumType("quote_status",
		"DRAFT", "SENT", "ACCEPTED", "REJECTED", "EXPIRED", "CONVERTED", "CANCELLED"),
	enumType("work_order_status",
		"PENDING", "SCHEDULED", "CONFIRMED", "EN_ROUTE", "IN_PROGRESS", "ON_HOLD", "COMPLETED", "CANCELLED", "REQUIRES_FOLLOWUP"),
	enumType("invoice_status",
		"ISSUED", "PARTIALLY_PAID", "PAID", "CANCELLED"),

	`CREATE TABLE IF NOT EXISTS service_requests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL,
		customer_name VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(32),
		address TEXT,
		description TEXT,
		status service_request_status NOT NULL DEFAULT 'NEW',
		service_charge NUMERIC(14,2) NOT NULL DEFAULT 0,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_service_requests_company_id ON service_requests (company_id);`,

	`CREATE TABLE IF NOT EXISTS site_visits (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL,
		service_request_id UUID NOT NULL REFERENCES service_requests (id) ON DELETE CASCADE,
		visited_at TIMESTAMPTZ,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_site_visits_service_request_id ON site_visits (service_request_id);`,

	`CREATE TABLE IF NOT EXISTS document_counters (
		company_id UUID NOT NULL,
		document_type VARCHAR(16) NOT NULL,
		format VARCHAR(64) NOT NULL,
		last_value BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (company_id, document_type)
	);`,

	`CREATE TABLE IF NOT EXISTS estimates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL,
		estimate_no VARCHAR(40) NOT NULL,
		service_request_id UUID NOT NULL REFERENCES service_requests (id),
		site_visit_id UUID REFERENCES site_visits (id) ON DELETE SET NULL,
		parent_estimate_id UUID REFERENCES estimates (id),
		version INT NOT NULL DEFAULT 1,
		is_latest_version BOOLEAN NOT NULL DEFAULT TRUE,
		status estimate_status NOT NULL DEFAULT 'DRAFT',
		title VARCHAR(255),
		notes TEXT,
		profit_margin_type VARCHAR(16),
		profit_margin_value NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount_type VARCHAR(16),
		discount_value NUMERIC(14,2) NOT NULL DEFAULT 0,
		vat_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		material_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		labor_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		equipment_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		other_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		subtotal NUMERIC(14,2) NOT NULL DEFAULT 0,
		profit_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_before_vat NUMERIC(14,2) NOT NULL DEFAULT 0,
		vat_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total NUMERIC(14,2) NOT NULL DEFAULT 0,
		submitted_by UUID,
		submitted_at TIMESTAMPTZ,
		submission_notes TEXT,
		reviewed_by UUID,
		reviewed_at TIMESTAMPTZ,
		manager_notes TEXT,
		rejection_reason TEXT,
		revision_reason TEXT,
		cancelled_at TIMESTAMPTZ,
		cancellation_reason TEXT,
		converted_quote_id UUID,
		converted_work_order_id UUID,
		converted_at TIMESTAMPTZ,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_estimates_company_no UNIQUE (company_id, estimate_no)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_estimates_service_request_id ON estimates (service_request_id);`,
	`CREATE INDEX IF NOT EXISTS idx_estimates_parent_estimate_id ON estimates (parent_estimate_id);`,

	`CREATE TABLE IF NOT EXISTS estimate_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		estimate_id UUID NOT NULL REFERENCES estimates (id) ON DELETE CASCADE,
		item_type VARCHAR(16) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		unit VARCHAR(32),
		quantity NUMERIC(14,3) NOT NULL CHECK (quantity > 0),
		unit_cost NUMERIC(14,2) NOT NULL CHECK (unit_cost >= 0),
		markup_type VARCHAR(16),
		markup_value NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_cost NUMERIC(14,2) NOT NULL,
		markup_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_price NUMERIC(14,2) NOT NULL,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_estimate_items_estimate_id ON estimate_items (estimate_id);`,

	`CREATE TABLE IF NOT EXISTS estimate_labor_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		estimate_id UUID NOT NULL REFERENCES estimates (id) ON DELETE CASCADE,
		description VARCHAR(255) NOT NULL,
		role VARCHAR(64),
		quantity NUMERIC(14,3) NOT NULL CHECK (quantity > 0),
		hours NUMERIC(10,2) NOT NULL CHECK (hours > 0),
		hourly_rate NUMERIC(14,2) NOT NULL CHECK (hourly_rate >= 0),
		markup_type VARCHAR(16),
		markup_value NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_cost NUMERIC(14,2) NOT NULL,
		markup_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_price NUMERIC(14,2) NOT NULL,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_estimate_labor_items_estimate_id ON estimate_labor_items (estimate_id);`,

	`CREATE TABLE IF NOT EXISTS estimate_activities (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		estimate_id UUID NOT NULL REFERENCES estimates (id) ON DELETE CASCADE,
		action VARCHAR(32) NOT NULL,
		description TEXT NOT NULL,
		actor_id UUID NOT NULL,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_estimate_activities_estimate_id ON estimate_activities (estimate_id);`,

	`CREATE TABLE IF NOT EXISTS quotes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL,
		quote_no VARCHAR(40) NOT NULL,
		service_request_id UUID NOT NULL REFERENCES service_requests (id),
		estimate_id UUID REFERENCES estimates (id),
		status quote_status NOT NULL DEFAULT 'DRAFT',
		subtotal NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount_type VARCHAR(16),
		discount_value NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		vat_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		vat_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total NUMERIC(14,2) NOT NULL DEFAULT 0,
		valid_until TIMESTAMPTZ NOT NULL,
		notes TEXT,
		terms TEXT,
		sent_at TIMESTAMPTZ,
		accepted_at TIMESTAMPTZ,
		rejected_at TIMESTAMPTZ,
		rejection_reason TEXT,
		expired_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		work_order_id UUID,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_quotes_company_no UNIQUE (company_id, quote_no)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_service_request_id ON quotes (service_request_id);`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_sent_valid_until ON quotes (valid_until) WHERE status = 'SENT';`,

	`CREATE TABLE IF NOT EXISTS quote_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		quote_id UUID NOT NULL REFERENCES quotes (id) ON DELETE CASCADE,
		item_type VARCHAR(16) NOT NULL,
		description VARCHAR(255) NOT NULL,
		unit VARCHAR(32),
		quantity NUMERIC(14,3) NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(14,4) NOT NULL,
		total_price NUMERIC(14,2) NOT NULL,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_quote_items_quote_id ON quote_items (quote_id);`,

	`CREATE TABLE IF NOT EXISTS work_orders (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL,
		work_order_no VARCHAR(40) NOT NULL,
		service_request_id UUID NOT NULL REFERENCES service_requests (id),
		quote_id UUID REFERENCES quotes (id),
		estimate_id UUID REFERENCES estimates (id),
		status work_order_status NOT NULL DEFAULT 'PENDING',
		priority VARCHAR(16) NOT NULL DEFAULT 'MEDIUM',
		title VARCHAR(255) NOT NULL,
		description TEXT,
		scheduled_date DATE,
		scheduled_time VARCHAR(5),
		estimated_duration INT,
		actual_duration INT,
		confirmed_at TIMESTAMPTZ,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		cancellation_reason TEXT,
		hold_reason TEXT,
		technician_notes TEXT,
		material_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		labor_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		additional_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		work_performed TEXT,
		customer_signature TEXT,
		technician_signature TEXT,
		signed_at TIMESTAMPTZ,
		customer_feedback TEXT,
		customer_rating INT CHECK (customer_rating BETWEEN 1 AND 5),
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_work_orders_company_no UNIQUE (company_id, work_order_no)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_orders_service_request_id ON work_orders (service_request_id);`,

	`CREATE TABLE IF NOT EXISTS work_order_team (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_order_id UUID NOT NULL REFERENCES work_orders (id) ON DELETE CASCADE,
		employee_id UUID NOT NULL,
		role VARCHAR(16) NOT NULL,
		hourly_rate NUMERIC(14,2),
		assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_work_order_team_member UNIQUE (work_order_id, employee_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_order_team_employee_id ON work_order_team (employee_id);`,

	`CREATE TABLE IF NOT EXISTS work_order_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_order_id UUID NOT NULL REFERENCES work_orders (id) ON DELETE CASCADE,
		item_type VARCHAR(16) NOT NULL,
		name VARCHAR(255) NOT NULL,
		unit VARCHAR(32),
		quantity NUMERIC(14,3) NOT NULL CHECK (quantity > 0),
		unit_cost NUMERIC(14,4) NOT NULL,
		total_cost NUMERIC(14,2) NOT NULL,
		is_from_estimate BOOLEAN NOT NULL DEFAULT FALSE,
		is_additional BOOLEAN NOT NULL DEFAULT FALSE,
		added_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_order_items_work_order_id ON work_order_items (work_order_id);`,

	`CREATE TABLE IF NOT EXISTS work_order_labor (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_order_id UUID NOT NULL REFERENCES work_orders (id) ON DELETE CASCADE,
		employee_id UUID NOT NULL,
		travel_start_at TIMESTAMPTZ,
		arrived_at TIMESTAMPTZ,
		clock_in_at TIMESTAMPTZ NOT NULL,
		clock_out_at TIMESTAMPTZ,
		break_minutes INT NOT NULL DEFAULT 0 CHECK (break_minutes >= 0),
		total_minutes INT NOT NULL DEFAULT 0 CHECK (total_minutes >= 0),
		hourly_rate NUMERIC(14,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_order_labor_work_order_id ON work_order_labor (work_order_id);`,
	// One open time entry per employee and work order.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_work_order_labor_open ON work_order_labor (work_order_id, employee_id) WHERE clock_out_at IS NULL;`,

	`CREATE TABLE IF NOT EXISTS work_order_checklist (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_order_id UUID NOT NULL REFERENCES work_orders (id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		is_required BOOLEAN NOT NULL DEFAULT FALSE,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_by UUID,
		completed_at TIMESTAMPTZ,
		notes TEXT,
		photo_url TEXT,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_order_checklist_work_order_id ON work_order_checklist (work_order_id);`,

	`CREATE TABLE IF NOT EXISTS work_order_photos (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_order_id UUID NOT NULL REFERENCES work_orders (id) ON DELETE CASCADE,
		photo_type VARCHAR(16) NOT NULL,
		url TEXT NOT NULL,
		caption TEXT,
		uploaded_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_order_photos_work_order_id ON work_order_photos (work_order_id);`,

	`CREATE TABLE IF NOT EXISTS work_order_activities (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_order_id UUID NOT NULL REFERENCES work_orders (id) ON DELETE CASCADE,
		action VARCHAR(32) NOT NULL,
		description TEXT NOT NULL,
		actor_id UUID NOT NULL,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_order_activities_work_order_id ON work_order_activities (work_order_id);`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL,
		invoice_no VARCHAR(40) NOT NULL,
		service_request_id UUID NOT NULL REFERENCES service_requests (id),
		status invoice_status NOT NULL DEFAULT 'ISSUED',
		subtotal NUMERIC(14,2) NOT NULL DEFAULT 0,
		vat_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		vat_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total NUMERIC(14,2) NOT NULL DEFAULT 0,
		paid_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		balance_due NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (balance_due >= 0),
		issued_at TIMESTAMPTZ NOT NULL,
		due_date DATE,
		paid_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		notes TEXT,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_invoices_company_no UNIQUE (company_id, invoice_no)
	);`,
	// A cancelled invoice frees its service request for a new one.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_service_request_active ON invoices (service_request_id) WHERE status <> 'CANCELLED';`,

	`CREATE TABLE IF NOT EXISTS invoice_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		invoice_id UUID NOT NULL REFERENCES invoices (id) ON DELETE CASCADE,
		item_type VARCHAR(16) NOT NULL,
		description VARCHAR(255) NOT NULL,
		quantity NUMERIC(14,3) NOT NULL,
		unit_price NUMERIC(14,4) NOT NULL,
		total_price NUMERIC(14,2) NOT NULL,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice_id ON invoice_items (invoice_id);`,

	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL,
		invoice_id UUID NOT NULL REFERENCES invoices (id),
		payment_no VARCHAR(40) NOT NULL,
		amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
		method VARCHAR(16) NOT NULL,
		reference VARCHAR(128),
		received_by UUID NOT NULL,
		paid_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_payments_company_no UNIQUE (company_id, payment_no)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_invoice_id ON payments (invoice_id);`,

	`CREATE TABLE IF NOT EXISTS receipts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL,
		invoice_id UUID NOT NULL REFERENCES invoices (id),
		payment_id UUID NOT NULL UNIQUE REFERENCES payments (id),
		receipt_no VARCHAR(40) NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		balance_after NUMERIC(14,2) NOT NULL,
		issued_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT uq_receipts_company_no UNIQUE (company_id, receipt_no)
	);`,

	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	updatedAtTrigger("service_requests"),
	updatedAtTrigger("estimates"),
	updatedAtTrigger("quotes"),
	updatedAtTrigger("work_orders"),
	updatedAtTrigger("work_order_labor"),
	updatedAtTrigger("invoices"),
	updatedAtTrigger("document_counters"),
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
