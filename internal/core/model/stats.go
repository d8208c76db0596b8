package model

type TaskStats struct {
	TotalTasks int64
	ByStatus   map[Status]int64
	ByCategory map[Category]int64
}
