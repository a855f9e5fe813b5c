package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	pkgerrors "staffhub/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestRequestService() (RequestService, *testMocks) {
	repo, mocks := newTestMocks()
	logger := zap.NewNop()
	notifier := NewNotifier(repo, nil, logger)
	svc := NewRequestService(repo, notifier, logger)
	return svc, mocks
}

// ── Create 测试 ──

func TestRequestService_Create_SnapshotsLedgerStatus(t *testing.T) {
	svc, mocks := setupTestRequestService()
	ctx := context.Background()
	mocks.attendances.Upsert(ctx, "u1", mustDate("2025-06-03"), model.StatusOffice, model.ProvenanceManual)

	resp, err := svc.Create(ctx, "u1", &dto.CreateChangeRequest{
		Date:      "2025-06-03",
		NewStatus: "REMOTE",
		Reason:    "家中设备调试",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.OldStatus != "OFFICE" || resp.NewStatus != "REMOTE" {
		t.Errorf("期望快照 OFFICE→REMOTE，实际=%s→%s", resp.OldStatus, resp.NewStatus)
	}
	if resp.Status != "PENDING" {
		t.Errorf("新申请应为 PENDING，实际=%s", resp.Status)
	}
}

func TestRequestService_Create_DerivedSnapshotWhenAbsent(t *testing.T) {
	svc, _ := setupTestRequestService()

	// 2025-06-03 周二无记录：快照为派生状态 UNKNOWN
	resp, err := svc.Create(context.Background(), "u1", &dto.CreateChangeRequest{
		Date:      "2025-06-03",
		NewStatus: "SICK",
		Reason:    "身体不适",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.OldStatus != "UNKNOWN" {
		t.Errorf("无记录工作日快照应为 UNKNOWN，实际=%s", resp.OldStatus)
	}
}

func TestRequestService_Create_WeekendSnapshot(t *testing.T) {
	svc, _ := setupTestRequestService()

	// 2025-06-08 周日无记录：快照为 WEEKEND
	resp, err := svc.Create(context.Background(), "u1", &dto.CreateChangeRequest{
		Date:      "2025-06-08",
		NewStatus: "OFFICE",
		Reason:    "周末值守",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.OldStatus != "WEEKEND" {
		t.Errorf("无记录周末快照应为 WEEKEND，实际=%s", resp.OldStatus)
	}
}

func TestRequestService_Create_EmptyReason(t *testing.T) {
	svc, _ := setupTestRequestService()
	ctx := context.Background()

	for _, reason := range []string{"", "   "} {
		_, err := svc.Create(ctx, "u1", &dto.CreateChangeRequest{
			Date:      "2025-06-03",
			NewStatus: "REMOTE",
			Reason:    reason,
		})
		if !errors.Is(err, ErrRequestEmptyReason) {
			t.Errorf("理由=%q 期望 ErrRequestEmptyReason，实际: %v", reason, err)
		}
	}
}

func TestRequestService_Create_DuplicatePending(t *testing.T) {
	svc, _ := setupTestRequestService()
	ctx := context.Background()

	req := &dto.CreateChangeRequest{Date: "2025-06-03", NewStatus: "REMOTE", Reason: "远程办公"}
	if _, err := svc.Create(ctx, "u1", req); err != nil {
		t.Fatalf("第一次 Create 应成功: %v", err)
	}
	if _, err := svc.Create(ctx, "u1", req); !errors.Is(err, ErrRequestDuplicate) {
		t.Errorf("期望 ErrRequestDuplicate，实际: %v", err)
	}
}

func TestRequestService_Create_NoChange(t *testing.T) {
	svc, mocks := setupTestRequestService()
	ctx := context.Background()
	mocks.attendances.Upsert(ctx, "u1", mustDate("2025-06-03"), model.StatusRemote, model.ProvenanceManual)

	_, err := svc.Create(ctx, "u1", &dto.CreateChangeRequest{
		Date:      "2025-06-03",
		NewStatus: "REMOTE",
		Reason:    "远程办公",
	})
	if !errors.Is(err, ErrRequestNoChange) {
		t.Errorf("期望 ErrRequestNoChange，实际: %v", err)
	}
}

// ── Resolve 测试 ──

func TestRequestService_Resolve_ApproveWritesLedger(t *testing.T) {
	svc, mocks := setupTestRequestService()
	ctx := context.Background()
	mocks.attendances.Upsert(ctx, "u1", mustDate("2025-06-03"), model.StatusOffice, model.ProvenancePattern)

	created, err := svc.Create(ctx, "u1", &dto.CreateChangeRequest{
		Date: "2025-06-03", NewStatus: "REMOTE", Reason: "远程办公",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	resolved, err := svc.Resolve(ctx, created.ID, "approve", "admin-1")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resolved.Status != "APPROVED" {
		t.Errorf("期望 APPROVED，实际=%s", resolved.Status)
	}

	att, _ := mocks.attendances.Get(ctx, "u1", mustDate("2025-06-03"))
	if att.Status != model.StatusRemote || att.Provenance != model.ProvenanceRequest {
		t.Errorf("期望台账 REMOTE/REQUEST，实际=%s/%s", att.Status, att.Provenance)
	}
}

func TestRequestService_Resolve_ApproveBlockedByManual(t *testing.T) {
	svc, mocks := setupTestRequestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", &dto.CreateChangeRequest{
		Date: "2025-06-03", NewStatus: "REMOTE", Reason: "远程办公",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 审批前管理员直接指定了该日状态
	mocks.attendances.Upsert(ctx, "u1", mustDate("2025-06-03"), model.StatusVacation, model.ProvenanceManual)

	_, err = svc.Resolve(ctx, created.ID, "approve", "admin-1")
	if !errors.Is(err, pkgerrors.ErrPrecedenceConflict) {
		t.Fatalf("期望 ErrPrecedenceConflict，实际: %v", err)
	}

	// 申请保持 PENDING，台账保持 MANUAL
	stored, _ := mocks.requests.GetByID(ctx, created.ID)
	if stored.Status != model.RequestPending {
		t.Errorf("冲突时申请应保持 PENDING，实际=%s", stored.Status)
	}
	att, _ := mocks.attendances.Get(ctx, "u1", mustDate("2025-06-03"))
	if att.Status != model.StatusVacation {
		t.Errorf("MANUAL 记录不应被降级，实际=%s", att.Status)
	}
}

func TestRequestService_Resolve_TerminalIsImmutable(t *testing.T) {
	svc, _ := setupTestRequestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", &dto.CreateChangeRequest{
		Date: "2025-06-03", NewStatus: "REMOTE", Reason: "远程办公",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if _, err := svc.Resolve(ctx, created.ID, "reject", "admin-1"); err != nil {
		t.Fatalf("Reject 应成功: %v", err)
	}

	// 终态后任何动作都被拒绝
	if _, err := svc.Resolve(ctx, created.ID, "approve", "admin-1"); !errors.Is(err, ErrRequestTerminal) {
		t.Errorf("期望 ErrRequestTerminal，实际: %v", err)
	}
	if _, err := svc.Resolve(ctx, created.ID, "reject", "admin-1"); !errors.Is(err, ErrRequestTerminal) {
		t.Errorf("期望 ErrRequestTerminal，实际: %v", err)
	}
}

func TestRequestService_Resolve_RejectLeavesLedgerUntouched(t *testing.T) {
	svc, mocks := setupTestRequestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", &dto.CreateChangeRequest{
		Date: "2025-06-03", NewStatus: "REMOTE", Reason: "远程办公",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if _, err := svc.Resolve(ctx, created.ID, "reject", "admin-1"); err != nil {
		t.Fatalf("Reject 应成功: %v", err)
	}

	if _, err := mocks.attendances.Get(ctx, "u1", mustDate("2025-06-03")); err == nil {
		t.Error("驳回不应写入台账")
	}
}

func TestRequestService_Resolve_UnknownAction(t *testing.T) {
	svc, _ := setupTestRequestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, "u1", &dto.CreateChangeRequest{
		Date: "2025-06-03", NewStatus: "REMOTE", Reason: "远程办公",
	})
	if _, err := svc.Resolve(ctx, created.ID, "escalate", "admin-1"); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("期望 ErrInvalidAction，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestRequestService_Delete_OwnerOnlyWhilePending(t *testing.T) {
	svc, _ := setupTestRequestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, "u1", &dto.CreateChangeRequest{
		Date: "2025-06-03", NewStatus: "REMOTE", Reason: "远程办公",
	})

	if err := svc.Delete(ctx, created.ID, "u2", model.RoleEmployee); !errors.Is(err, ErrRequestForbidden) {
		t.Errorf("期望 ErrRequestForbidden，实际: %v", err)
	}
	if err := svc.Delete(ctx, created.ID, "u1", model.RoleEmployee); err != nil {
		t.Errorf("发起人撤回应成功: %v", err)
	}
}

func TestRequestService_Delete_TerminalBlockedForOwner(t *testing.T) {
	svc, _ := setupTestRequestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, "u1", &dto.CreateChangeRequest{
		Date: "2025-06-03", NewStatus: "REMOTE", Reason: "远程办公",
	})
	if _, err := svc.Resolve(ctx, created.ID, "approve", "admin-1"); err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}

	if err := svc.Delete(ctx, created.ID, "u1", model.RoleEmployee); !errors.Is(err, ErrRequestTerminal) {
		t.Errorf("终态申请发起人不可删除，实际: %v", err)
	}
	// 管理员仍可清理
	if err := svc.Delete(ctx, created.ID, "admin-1", model.RoleAdmin); err != nil {
		t.Errorf("管理员删除应成功: %v", err)
	}
}
