package achievement

const (
	// MaxLevel 等级上限，超过后 XP 不再影响等级
	MaxLevel = 100

	xpPerLevel = 100
)

// XPFloor 返回到达指定等级所需的累计 XP。
// 第 L 级的区间宽度为 L*100。
func XPFloor(level int) int {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return xpPerLevel * (level - 1) * level / 2
}

// LevelFor 根据累计 XP 计算当前等级以及本级进度百分比 (0-100)。
func LevelFor(totalXP int) (level, progress int) {
	level = 1
	required := 0
	for l := 1; l < MaxLevel; l++ {
		band := l * xpPerLevel
		if totalXP < required+band {
			break
		}
		level = l + 1
		required += band
	}

	band := level * xpPerLevel
	progress = (totalXP - required) * 100 / band
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return level, progress
}

// XPToNextLevel 返回距离下一级还差多少 XP，满级返回 0
func XPToNextLevel(totalXP int) int {
	level, _ := LevelFor(totalXP)
	if level >= MaxLevel {
		return 0
	}
	remaining := XPFloor(level+1) - totalXP
	if remaining < 0 {
		return 0
	}
	return remaining
}
