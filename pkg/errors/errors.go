package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrPrecedenceConflict 低优先级写入被已有高优先级考勤记录拒绝
// 批量操作（如周期规则展开）中属于可统计的预期结果，不中断批次
var ErrPrecedenceConflict = errors.New("已存在更高优先级的考勤记录")

// ErrSwapConflict 换班审批时考勤台账已偏离申请时的快照，需重新发起
var ErrSwapConflict = errors.New("考勤状态已变更，换班申请需重新发起")
