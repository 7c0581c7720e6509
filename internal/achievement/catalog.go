// Package achievement 定义成就目录、等级曲线以及统计计数的状态迁移规则。
// 包内只有纯函数，不做任何 I/O，持久化由 service 层负责。
package achievement

import "fmt"

// ID 成就的稳定标识
type ID string

const (
	DailyStreak3           ID = "daily_streak_3"
	DailyStreak7           ID = "daily_streak_7"
	DailyStreak30          ID = "daily_streak_30"
	AssignmentsCompleted3  ID = "assignments_completed_3"
	AssignmentsCompleted10 ID = "assignments_completed_10"
	AssignmentsCompleted25 ID = "assignments_completed_25"
	PerfectScore5          ID = "perfect_score_5"
	PerfectScore15         ID = "perfect_score_15"
	TopicsCompleted5       ID = "topics_completed_5"
	TopicsCompleted15      ID = "topics_completed_15"
	FastLearner            ID = "fast_learner"
	ConsistentLearner      ID = "consistent_learner"
	FirstPerfect           ID = "first_perfect"
	EarlyBird              ID = "early_bird"
	HelpfulStudent         ID = "helpful_student"
)

// Badge 奖励徽章等级
type Badge string

const (
	Bronze Badge = "bronze"
	Silver Badge = "silver"
	Gold   Badge = "gold"
)

type Category string

const (
	CategoryVisits      Category = "visits"
	CategoryAssignments Category = "assignments"
	CategoryGrades      Category = "grades"
	CategoryLearning    Category = "learning"
	CategorySpeed       Category = "speed"
	CategoryConsistency Category = "consistency"
	CategorySpecial     Category = "special"
	CategorySocial      Category = "social"
)

// Definition 成就定义，运行期只读
type Definition struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	MaxProgress int      `json:"max_progress"`
	RewardXP    int      `json:"reward_xp"`
	RewardBadge Badge    `json:"reward_badge"`
	Category    Category `json:"category"`
}

var definitions = []Definition{
	{DailyStreak3, "First Steps", "Visit the site 3 days in a row", 3, 50, Bronze, CategoryVisits},
	{DailyStreak7, "Weekly Marathon", "Visit the site 7 days in a row", 7, 150, Silver, CategoryVisits},
	{DailyStreak30, "Month of Persistence", "Visit the site 30 days in a row", 30, 500, Gold, CategoryVisits},
	{AssignmentsCompleted3, "First Successes", "Complete 3 assignments", 3, 100, Bronze, CategoryAssignments},
	{AssignmentsCompleted10, "Decathlon", "Complete 10 assignments", 10, 300, Silver, CategoryAssignments},
	{AssignmentsCompleted25, "Assignment Master", "Complete 25 assignments", 25, 750, Gold, CategoryAssignments},
	{PerfectScore5, "Honor Student", "Receive 5 excellent grades", 5, 200, Silver, CategoryGrades},
	{PerfectScore15, "Super Honor Student", "Receive 15 excellent grades", 15, 600, Gold, CategoryGrades},
	{TopicsCompleted5, "Curious Mind", "Study 5 topics", 5, 150, Bronze, CategoryLearning},
	{TopicsCompleted15, "Erudite", "Study 15 topics", 15, 400, Silver, CategoryLearning},
	{FastLearner, "Fast Learner", "Complete 3 assignments in one day", 3, 250, Silver, CategorySpeed},
	{ConsistentLearner, "Consistent Learner", "Submit assignments 5 days in a row", 5, 300, Silver, CategoryConsistency},
	{FirstPerfect, "First Success", "Receive your first excellent grade", 1, 100, Bronze, CategorySpecial},
	{EarlyBird, "Early Bird", "Submit an assignment before the deadline", 1, 75, Bronze, CategorySpecial},
	{HelpfulStudent, "Helper", "Help other students with comments", 5, 200, Silver, CategorySocial},
}

var (
	byID  map[ID]Definition
	order map[ID]int
)

func init() {
	byID = make(map[ID]Definition, len(definitions))
	order = make(map[ID]int, len(definitions))
	for i, def := range definitions {
		if def.MaxProgress <= 0 {
			panic(fmt.Sprintf("achievement %q: max progress must be positive", def.ID))
		}
		if _, dup := byID[def.ID]; dup {
			panic(fmt.Sprintf("achievement %q defined twice", def.ID))
		}
		byID[def.ID] = def
		order[def.ID] = i
	}
}

// Lookup 按 ID 查找成就定义
func Lookup(id ID) (Definition, bool) {
	def, ok := byID[id]
	return def, ok
}

// ParseID 将外部输入转换为已知的成就 ID
func ParseID(s string) (ID, bool) {
	id := ID(s)
	_, ok := byID[id]
	return id, ok
}

// IDs 按目录顺序返回全部成就 ID
func IDs() []ID {
	ids := make([]ID, len(definitions))
	for i, def := range definitions {
		ids[i] = def.ID
	}
	return ids
}

// All 返回目录副本
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Position 返回成就在目录中的位置，未知 ID 排在最后
func Position(id ID) int {
	if i, ok := order[id]; ok {
		return i
	}
	return len(definitions)
}
