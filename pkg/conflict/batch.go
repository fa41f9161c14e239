package conflict

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xiuban/xiuban/pkg/model"
)

// BatchDetectionResult 批量检测结果
// 除整批的全局检测外，还包含按员工、按班次的独立检测视图
type BatchDetectionResult struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Global     *DetectionResult               `json:"global"`
	ByEmployee map[uuid.UUID]*DetectionResult `json:"by_employee,omitempty"`
	ByShift    map[uuid.UUID]*DetectionResult `json:"by_shift,omitempty"`

	// 存在冲突的员工（排序后，便于直接展示）
	EmployeesWithConflicts []uuid.UUID `json:"employees_with_conflicts,omitempty"`
}

// DetectBatch 对一批分配执行批量检测
//
// 各员工组的检测互相独立，按配置的并行度分发到工作协程执行，
// 聚合在单个收集循环内完成。冲突列表是无序集合，并行不改变语义。
func (d *Detector) DetectBatch(assignments []*model.Assignment, ctx *model.ScheduleContext) *BatchDetectionResult {
	batch := &BatchDetectionResult{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		ByEmployee: make(map[uuid.UUID]*DetectionResult),
		ByShift:    make(map[uuid.UUID]*DetectionResult),
	}

	byEmployee := groupByEmployee(assignments)

	type empResult struct {
		employeeID uuid.UUID
		result     *DetectionResult
	}

	workers := d.config.ParallelWorkers
	if workers <= 0 {
		workers = 1
	}

	jobChan := make(chan uuid.UUID, len(byEmployee))
	resultChan := make(chan empResult, len(byEmployee))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for empID := range jobChan {
				resultChan <- empResult{
					employeeID: empID,
					result:     d.DetectForEmployee(empID, byEmployee[empID], ctx),
				}
			}
		}()
	}

	for empID := range byEmployee {
		jobChan <- empID
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for r := range resultChan {
		batch.ByEmployee[r.employeeID] = r.result
		if r.result.HasConflicts {
			batch.EmployeesWithConflicts = append(batch.EmployeesWithConflicts, r.employeeID)
		}
	}

	sort.Slice(batch.EmployeesWithConflicts, func(i, j int) bool {
		return batch.EmployeesWithConflicts[i].String() < batch.EmployeesWithConflicts[j].String()
	})

	// 按班次的独立视图（容量规则的讨论范围以班次为单位）
	for shiftID, group := range groupByShift(assignments) {
		batch.ByShift[shiftID] = d.Detect(group, ctx)
	}

	// 整批的全局检测
	batch.Global = d.Detect(assignments, ctx)

	return batch
}
