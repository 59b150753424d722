package service

import (
	"context"
	"strings"
	"testing"

	"leadvox_backend/internal/apollo"
	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/platform/apperr"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func TestProcessAllContactWithoutEmail(t *testing.T) {
	f := newFixture()
	f.resolver.contacts["org-1"] = apollo.ResolvedContact{
		Person: &apollo.Person{FirstName: "Sam", LastName: "Lee", Title: "CEO"},
		Email:  "",
	}

	result := f.svc.ProcessAll(context.Background(), []ImportCandidate{{
		OrganizationID: "org-1",
		Name:           "Acme",
		Domain:         "acme.test",
	}})

	if result.Imported != 1 {
		t.Fatalf("imported = %d, want 1", result.Imported)
	}
	if result.NoContact != 1 {
		t.Fatalf("noContact = %d, want 1", result.NoContact)
	}
	if result.EmailGenerated != 0 || result.Errors != 0 {
		t.Fatalf("generated=%d errors=%d, want 0/0", result.EmailGenerated, result.Errors)
	}

	id := uuid.MustParse(result.Outcomes[0].CompanyID)
	company, err := f.store.GetCompany(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCompany: %v", err)
	}
	if company.State != domain.StateEmailNotGenerated {
		t.Fatalf("state = %s, want %s", company.State, domain.StateEmailNotGenerated)
	}
	if company.NotGenerated == nil || company.NotGenerated.String() != "contact_found_no_email" {
		t.Fatalf("reason = %v, want contact_found_no_email", company.NotGenerated)
	}
	if company.ContactFirst == nil || *company.ContactFirst != "Sam" {
		t.Fatal("contact snapshot not persisted before parking the company")
	}
	if f.generator.calls != 0 {
		t.Fatalf("generator called %d times despite missing email", f.generator.calls)
	}
}

func TestProcessAllFullFlow(t *testing.T) {
	f := newFixture()
	f.resolver.contacts["org-1"] = apollo.ResolvedContact{
		Person: &apollo.Person{FirstName: "Sam", LastName: "Lee", Title: "CEO"},
		Email:  "sam@acme.test",
	}

	result := f.svc.ProcessAll(context.Background(), []ImportCandidate{{
		OrganizationID: "org-1",
		Name:           "Acme",
		Domain:         "acme.test",
	}})

	if result.EmailGenerated != 1 {
		t.Fatalf("emailGenerated = %d, want 1", result.EmailGenerated)
	}
	id := uuid.MustParse(result.Outcomes[0].CompanyID)
	company, _ := f.store.GetCompany(context.Background(), id)
	if company.State != domain.StatePendingReview {
		t.Fatalf("state = %s, want %s", company.State, domain.StatePendingReview)
	}
	draft, err := f.store.GetDraftByCompany(context.Background(), id)
	if err != nil {
		t.Fatalf("GetDraftByCompany: %v", err)
	}
	if draft.Subject != "Quick question" {
		t.Fatalf("draft subject = %q", draft.Subject)
	}
	// state_change + email_generated
	if got := f.store.auditCountFor(id); got != 2 {
		t.Fatalf("audit rows = %d, want 2", got)
	}
}

func TestProcessAllGenerationFailureCountsAsError(t *testing.T) {
	f := newFixture()
	f.generator.err = errProviderDown
	f.resolver.contacts["org-1"] = apollo.ResolvedContact{
		Person: &apollo.Person{FirstName: "Sam", LastName: "Lee"},
		Email:  "sam@acme.test",
	}

	result := f.svc.ProcessAll(context.Background(), []ImportCandidate{{
		OrganizationID: "org-1",
		Name:           "Acme",
	}})

	if result.Errors != 1 {
		t.Fatalf("errors = %d, want 1", result.Errors)
	}
	if result.NoContact != 0 {
		t.Fatalf("generation failure must not land in the no-contact bucket")
	}
	if len(result.ErrorDetails) != 1 || result.ErrorDetails[0].CompanyName != "Acme" {
		t.Fatalf("errorDetails = %+v", result.ErrorDetails)
	}

	id := uuid.MustParse(result.Outcomes[0].CompanyID)
	company, _ := f.store.GetCompany(context.Background(), id)
	if company.State != domain.StateEmailNotGenerated {
		t.Fatalf("state = %s, want %s", company.State, domain.StateEmailNotGenerated)
	}
	if company.NotGenerated == nil || !strings.HasPrefix(company.NotGenerated.String(), "email_generation_failed: ") {
		t.Fatalf("reason = %v, want email_generation_failed prefix", company.NotGenerated)
	}
}

func TestProcessAllIsolatesPerItemFailures(t *testing.T) {
	f := newFixture()
	f.resolver.contacts["org-ok"] = apollo.ResolvedContact{
		Person: &apollo.Person{FirstName: "Sam"},
		Email:  "sam@ok.test",
	}
	// org-bad has no scripted contact: resolver returns nobody found,
	// which parks the company rather than failing the batch.
	candidates := []ImportCandidate{
		{OrganizationID: "org-bad", Name: "Bad Co"},
		{OrganizationID: "org-ok", Name: "Ok Co"},
	}

	result := f.svc.ProcessAll(context.Background(), candidates)

	if result.Imported != 2 {
		t.Fatalf("imported = %d, want 2", result.Imported)
	}
	if result.EmailGenerated != 1 || result.NoContact != 1 {
		t.Fatalf("generated=%d noContact=%d, want 1/1", result.EmailGenerated, result.NoContact)
	}
}

func TestProcessAllLeavesReviewedCompaniesUntouched(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StatePendingReview, strPtr("sam@acme.test"))
	apolloID := "org-1"
	company.ApolloID = &apolloID
	draft := f.store.addDraft(company.ID, "Quick question", "Hi Jane,")
	draft.EditedSubject = strPtr("Carefully edited subject")

	result := f.svc.ProcessAll(context.Background(), []ImportCandidate{{
		OrganizationID: "org-1",
		Name:           "Acme",
		Domain:         "acme.test",
	}})

	if result.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", result.Skipped)
	}
	if result.Errors != 0 || result.Imported != 0 {
		t.Fatalf("errors=%d imported=%d, want 0/0", result.Errors, result.Imported)
	}

	stored, err := f.store.GetDraftByCompany(context.Background(), company.ID)
	if err != nil {
		t.Fatalf("GetDraftByCompany: %v", err)
	}
	if stored.EditedSubject == nil || *stored.EditedSubject != "Carefully edited subject" {
		t.Fatalf("editedSubject = %v, reviewed content must survive a re-import", stored.EditedSubject)
	}
	updated, _ := f.store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StatePendingReview {
		t.Fatalf("state = %s, want unchanged %s", updated.State, domain.StatePendingReview)
	}
	if f.generator.calls != 0 {
		t.Fatalf("generator called %d times for an already-reviewed company", f.generator.calls)
	}
}

func TestProcessAllSkipsPendingCompanyWithExistingDraft(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StatePendingGeneration, strPtr("sam@acme.test"))
	apolloID := "org-1"
	company.ApolloID = &apolloID
	f.store.addDraft(company.ID, "Existing subject", "Existing body")

	result := f.svc.ProcessAll(context.Background(), []ImportCandidate{{
		OrganizationID: "org-1",
		Name:           "Acme",
	}})

	if result.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", result.Skipped)
	}
	stored, _ := f.store.GetDraftByCompany(context.Background(), company.ID)
	if stored.Subject != "Existing subject" {
		t.Fatalf("subject = %q, existing draft must not be replaced", stored.Subject)
	}
	if f.generator.calls != 0 {
		t.Fatal("generator must not run when a draft already exists")
	}
}

func TestApproveFreezesEditedContent(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StatePendingReview, strPtr("sam@acme.test"))
	f.store.addDraft(company.ID, "Original subject", "Original body")

	if _, err := f.svc.Review(context.Background(), company.ID, ReviewInput{EditedSubject: strPtr("Hi there"), EditedBody: strPtr("Hello")}, nil); err != nil {
		t.Fatalf("Review: %v", err)
	}
	draft, err := f.svc.Approve(context.Background(), company.ID, nil)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if draft.FinalSubject == nil || *draft.FinalSubject != "Hi there" {
		t.Fatalf("finalSubject = %v, want edited subject", draft.FinalSubject)
	}
	if draft.FinalBody == nil || *draft.FinalBody != "Hello" {
		t.Fatalf("finalBody = %v, want edited body", draft.FinalBody)
	}
	updated, _ := f.store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StateApprovedToSend {
		t.Fatalf("state = %s, want %s", updated.State, domain.StateApprovedToSend)
	}
}

func TestApproveWithoutEditsFreezesOriginal(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StatePendingReview, strPtr("sam@acme.test"))
	f.store.addDraft(company.ID, "Original subject", "Original body")

	draft, err := f.svc.Approve(context.Background(), company.ID, nil)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if draft.FinalSubject == nil || *draft.FinalSubject != "Original subject" {
		t.Fatalf("finalSubject = %v, want generated subject", draft.FinalSubject)
	}
}

func TestApproveRejectsWrongState(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StatePendingGeneration, nil)

	_, err := f.svc.Approve(context.Background(), company.ID, nil)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestSendSuccess(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StateApprovedToSend, strPtr("sam@acme.test"))
	f.store.addDraft(company.ID, "Subject", "Body")
	before := f.store.auditCountFor(company.ID)

	draft, err := f.svc.Send(context.Background(), company.ID, nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if draft.SendAttempts != 1 {
		t.Fatalf("sendAttempts = %d, want 1", draft.SendAttempts)
	}
	if draft.SentTo == nil || *draft.SentTo != "sam@acme.test" {
		t.Fatalf("sentTo = %v, want recipient", draft.SentTo)
	}
	if draft.SendError != nil {
		t.Fatalf("sendError = %q, want nil", *draft.SendError)
	}
	if draft.SentAt == nil {
		t.Fatal("sentAt not stamped")
	}
	updated, _ := f.store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StateSent {
		t.Fatalf("state = %s, want %s", updated.State, domain.StateSent)
	}
	if got := f.store.auditCountFor(company.ID); got != before+1 {
		t.Fatalf("audit rows = %d, want %d", got, before+1)
	}
	if len(f.dispatcher.sent) != 1 || f.dispatcher.sent[0].To != "sam@acme.test" {
		t.Fatalf("dispatched = %+v", f.dispatcher.sent)
	}
}

func TestSendFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture()
	f.dispatcher.err = errProviderDown
	company := f.store.addCompany("Acme", domain.StateApprovedToSend, strPtr("sam@acme.test"))
	f.store.addDraft(company.ID, "Subject", "Body")
	before := f.store.auditCountFor(company.ID)

	draft, err := f.svc.Send(context.Background(), company.ID, nil)
	if err == nil {
		t.Fatal("expected error from failed dispatch")
	}
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Fatalf("kind = %v, want unavailable", apperr.GetKind(err))
	}

	if draft.SendAttempts != 1 {
		t.Fatalf("sendAttempts = %d, want 1 even on failure", draft.SendAttempts)
	}
	if draft.SendError == nil || !strings.Contains(*draft.SendError, "provider down") {
		t.Fatalf("sendError = %v, want recorded failure", draft.SendError)
	}
	if draft.SentAt != nil || draft.SentTo != nil {
		t.Fatal("failed send must not stamp sentAt/sentTo")
	}
	updated, _ := f.store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StateApprovedToSend {
		t.Fatalf("state = %s, want unchanged %s", updated.State, domain.StateApprovedToSend)
	}
	if got := f.store.auditCountFor(company.ID); got != before {
		t.Fatalf("audit rows = %d, want %d (no row for failed send)", got, before)
	}
}

func TestSendPrefersFrozenContent(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StateApprovedToSend, strPtr("sam@acme.test"))
	d := f.store.addDraft(company.ID, "Original", "Original body")
	d.EditedSubject = strPtr("Edited")
	d.FinalSubject = strPtr("Final")
	d.FinalBody = strPtr("Final body")

	if _, err := f.svc.Send(context.Background(), company.ID, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if f.dispatcher.sent[0].Subject != "Final" || f.dispatcher.sent[0].Body != "Final body" {
		t.Fatalf("dispatched %q/%q, want frozen content", f.dispatcher.sent[0].Subject, f.dispatcher.sent[0].Body)
	}
}

func TestSendAppliesSenderOverride(t *testing.T) {
	f := newFixture()
	f.svc.sender = &fakeSender{name: "Sales Team", email: "sales@leadvox.test"}
	company := f.store.addCompany("Acme", domain.StateApprovedToSend, strPtr("sam@acme.test"))
	f.store.addDraft(company.ID, "Subject", "Body")

	if _, err := f.svc.Send(context.Background(), company.ID, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msg := f.dispatcher.sent[0]
	if msg.FromName != "Sales Team" || msg.FromEmail != "sales@leadvox.test" {
		t.Fatalf("from = %q <%s>, want operator override", msg.FromName, msg.FromEmail)
	}
}

func TestSendFallsBackWhenSenderSourceFails(t *testing.T) {
	f := newFixture()
	f.svc.sender = &fakeSender{err: errProviderDown}
	company := f.store.addCompany("Acme", domain.StateApprovedToSend, strPtr("sam@acme.test"))
	f.store.addDraft(company.ID, "Subject", "Body")

	if _, err := f.svc.Send(context.Background(), company.ID, nil); err != nil {
		t.Fatalf("Send must not fail on sender settings errors: %v", err)
	}
	if msg := f.dispatcher.sent[0]; msg.FromEmail != "" {
		t.Fatalf("fromEmail = %q, want empty so the configured sender applies", msg.FromEmail)
	}
}

func TestReviewOverridesRecipient(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StatePendingReview, strPtr("old@acme.test"))
	f.store.addDraft(company.ID, "Subject", "Body")

	_, err := f.svc.Review(context.Background(), company.ID, ReviewInput{RecipientEmail: strPtr("new@acme.test")}, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}

	updated, _ := f.store.GetCompany(context.Background(), company.ID)
	if updated.ContactEmail == nil || *updated.ContactEmail != "new@acme.test" {
		t.Fatalf("contactEmail = %v, want override", updated.ContactEmail)
	}
	if updated.ContactFirst == nil || *updated.ContactFirst != "Jane" {
		t.Fatal("recipient override must keep the rest of the contact snapshot")
	}
}

func TestUpdateCompanyPatchesFields(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StatePendingGeneration, nil)

	updated, err := f.svc.UpdateCompany(context.Background(), repository.UpdateCompanyParams{
		CompanyID: company.ID,
		Name:      strPtr("  Acme B.V.  "),
		Industry:  strPtr("Logistics"),
	})
	if err != nil {
		t.Fatalf("UpdateCompany: %v", err)
	}
	if updated.Name != "Acme B.V." {
		t.Fatalf("name = %q, want trimmed patch", updated.Name)
	}
	if updated.Industry == nil || *updated.Industry != "Logistics" {
		t.Fatalf("industry = %v", updated.Industry)
	}
	if updated.State != domain.StatePendingGeneration {
		t.Fatalf("state = %s, patches must not touch the pipeline state", updated.State)
	}
}

func TestUpdateCompanyRejectsBlankName(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StatePendingGeneration, nil)

	_, err := f.svc.UpdateCompany(context.Background(), repository.UpdateCompanyParams{
		CompanyID: company.ID,
		Name:      strPtr("   "),
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestRetryClearsReasonAndRegenerates(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StateEmailNotGenerated, strPtr("sam@acme.test"))
	reason := domain.GenerationFailed("empty response")
	company.NotGenerated = &reason

	if err := f.svc.Retry(context.Background(), company.ID, nil); err != nil {
		t.Fatalf("Retry: %v", err)
	}

	updated, _ := f.store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StatePendingReview {
		t.Fatalf("state = %s, want %s", updated.State, domain.StatePendingReview)
	}
	if updated.NotGenerated != nil {
		t.Fatalf("reason survived retry: %v", updated.NotGenerated)
	}
	if _, err := f.store.GetDraftByCompany(context.Background(), company.ID); err != nil {
		t.Fatalf("draft missing after retry: %v", err)
	}
}

func TestRetryRequiresContactEmail(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StateEmailNotGenerated, nil)

	err := f.svc.Retry(context.Background(), company.ID, nil)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
	if f.generator.calls != 0 {
		t.Fatal("generator must not run without a contact email")
	}
}

func TestBatchRetrySkipsIneligibleAtSelection(t *testing.T) {
	f := newFixture()
	eligible := f.store.addCompany("Eligible", domain.StateEmailNotGenerated, strPtr("a@a.test"))
	noEmail := f.store.addCompany("No Email", domain.StateEmailNotGenerated, nil)
	wrongState := f.store.addCompany("Wrong State", domain.StatePendingReview, strPtr("b@b.test"))

	result, err := f.svc.BatchRetry(context.Background(), []uuid.UUID{eligible.ID, noEmail.ID, wrongState.ID, uuid.New()}, nil)
	if err != nil {
		t.Fatalf("BatchRetry: %v", err)
	}

	if result.Succeeded != 1 {
		t.Fatalf("succeeded = %d, want 1", result.Succeeded)
	}
	if result.Skipped != 3 {
		t.Fatalf("skipped = %d, want 3", result.Skipped)
	}
	if result.Failed != 0 {
		t.Fatalf("failed = %d, want 0 (ineligible items are skipped, not failed)", result.Failed)
	}
}

func TestBatchDeleteReportsMissingByName(t *testing.T) {
	f := newFixture()
	existing := f.store.addCompany("Acme", domain.StatePendingGeneration, nil)
	missing := uuid.New()

	result, err := f.svc.BatchDelete(context.Background(), []uuid.UUID{existing.ID, missing}, false)
	if err != nil {
		t.Fatalf("BatchDelete: %v", err)
	}

	if result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("succeeded=%d failed=%d, want 1/1", result.Succeeded, result.Failed)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %+v, want one entry", result.Errors)
	}
	detail := result.Errors[0]
	if detail.CompanyID != missing.String() {
		t.Fatalf("error id = %s, want %s", detail.CompanyID, missing)
	}
	if detail.CompanyName != "Unknown" {
		t.Fatalf("error name = %q, want Unknown for a row that never existed", detail.CompanyName)
	}
	if _, err := f.store.GetCompany(context.Background(), existing.ID); err == nil {
		t.Fatal("existing company not deleted")
	}
}

func TestBatchDeleteNamesComeFromSnapshot(t *testing.T) {
	f := newFixture()
	a := f.store.addCompany("First", domain.StatePendingGeneration, nil)
	b := f.store.addCompany("Second", domain.StatePendingGeneration, nil)

	result, err := f.svc.BatchDelete(context.Background(), []uuid.UUID{a.ID, b.ID}, false)
	if err != nil {
		t.Fatalf("BatchDelete: %v", err)
	}
	if result.Succeeded != 2 {
		t.Fatalf("succeeded = %d, want 2", result.Succeeded)
	}
}

func TestDeleteDraftAndReset(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StatePendingReview, strPtr("sam@acme.test"))
	f.store.addDraft(company.ID, "Subject", "Body")

	if err := f.svc.DeleteDraftAndReset(context.Background(), company.ID, nil); err != nil {
		t.Fatalf("DeleteDraftAndReset: %v", err)
	}
	updated, _ := f.store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StatePendingGeneration {
		t.Fatalf("state = %s, want %s", updated.State, domain.StatePendingGeneration)
	}
	if _, err := f.store.GetDraftByCompany(context.Background(), company.ID); err == nil {
		t.Fatal("draft survived reset")
	}
}

func TestDeleteDraftAndResetFromApprovedState(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StateApprovedToSend, strPtr("sam@acme.test"))
	f.store.addDraft(company.ID, "Subject", "Body")

	if err := f.svc.DeleteDraftAndReset(context.Background(), company.ID, nil); err != nil {
		t.Fatalf("DeleteDraftAndReset: %v", err)
	}

	updated, _ := f.store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StatePendingGeneration {
		t.Fatalf("state = %s, want forced reset to %s", updated.State, domain.StatePendingGeneration)
	}
	if _, err := f.store.GetDraftByCompany(context.Background(), company.ID); err == nil {
		t.Fatal("draft survived reset")
	}

	entries, _ := f.store.ListAuditEntries(context.Background(), company.ID, 10)
	if len(entries) != 1 {
		t.Fatalf("audit rows = %d, want exactly 1", len(entries))
	}
	entry := entries[0]
	if entry.Action != domain.AuditActionEmailDeleted {
		t.Fatalf("action = %s, want %s", entry.Action, domain.AuditActionEmailDeleted)
	}
	if entry.FromState == nil || *entry.FromState != domain.StateApprovedToSend {
		t.Fatalf("fromState = %v, want %s", entry.FromState, domain.StateApprovedToSend)
	}
	if entry.ToState == nil || *entry.ToState != domain.StatePendingGeneration {
		t.Fatalf("toState = %v, want %s", entry.ToState, domain.StatePendingGeneration)
	}
}

func TestDeleteDraftAndResetWithoutDraft(t *testing.T) {
	f := newFixture()
	company := f.store.addCompany("Acme", domain.StateApprovedToSend, strPtr("sam@acme.test"))

	err := f.svc.DeleteDraftAndReset(context.Background(), company.ID, nil)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
	updated, _ := f.store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StateApprovedToSend {
		t.Fatalf("state = %s, a failed reset must not move the company", updated.State)
	}
}

func TestGeneratedAuditMetadataTagsOrigin(t *testing.T) {
	f := newFixture()
	f.resolver.contacts["org-1"] = apollo.ResolvedContact{
		Person: &apollo.Person{FirstName: "Sam", LastName: "Lee", Title: "CEO"},
		Email:  "sam@acme.test",
	}

	result := f.svc.ProcessAll(context.Background(), []ImportCandidate{{
		OrganizationID: "org-1",
		Name:           "Acme",
	}})
	id := uuid.MustParse(result.Outcomes[0].CompanyID)

	generated := findAuditEntry(t, f, id, domain.AuditActionEmailGenerated)
	if generated.Metadata["autoProcessed"] != true {
		t.Fatalf("metadata = %v, want autoProcessed flag", generated.Metadata)
	}
	if generated.Metadata["targetContact"] != "Sam Lee" {
		t.Fatalf("targetContact = %v, want Sam Lee", generated.Metadata["targetContact"])
	}

	// Park the company again and run a batch retry; its generation row
	// must carry the batchRetry flag instead.
	f.store.companies[id].State = domain.StateEmailNotGenerated
	if _, err := f.svc.BatchRetry(context.Background(), []uuid.UUID{id}, nil); err != nil {
		t.Fatalf("BatchRetry: %v", err)
	}
	retried := findAuditEntry(t, f, id, domain.AuditActionEmailGenerated)
	if retried.Metadata["batchRetry"] != true {
		t.Fatalf("metadata = %v, want batchRetry flag", retried.Metadata)
	}
	if _, ok := retried.Metadata["autoProcessed"]; ok {
		t.Fatal("batch retry row must not carry the autoProcessed flag")
	}
}

// findAuditEntry returns the newest audit entry with the given action.
func findAuditEntry(t *testing.T, f *fixture, id uuid.UUID, action string) domain.AuditLogEntry {
	t.Helper()
	entries, err := f.store.ListAuditEntries(context.Background(), id, 50)
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	for _, entry := range entries {
		if entry.Action == action {
			return entry
		}
	}
	t.Fatalf("no %s audit entry found", action)
	return domain.AuditLogEntry{}
}

func TestStatsZeroFillsEveryState(t *testing.T) {
	f := newFixture()
	f.store.addCompany("Acme", domain.StatePendingReview, nil)

	stats, err := f.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.PendingReview != 1 {
		t.Fatalf("pendingReview = %d, want 1", stats.PendingReview)
	}
	if stats.Total != 1 {
		t.Fatalf("total = %d, want 1", stats.Total)
	}
	if stats.Sent != 0 || stats.PendingGeneration != 0 {
		t.Fatalf("zero states not zero-filled: %+v", stats)
	}
}
