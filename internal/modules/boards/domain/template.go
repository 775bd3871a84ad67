package domain

const (
	defaultBoardDescription = "Manage any type of project. Assign owners, set timelines and keep track of where your project stands."
	defaultGroupTitle       = "Group Title"
	defaultTaskTitle        = "New Task"
	defaultStatus           = "Not Started"
	defaultPriority         = "Low"
)

var DefaultCmpsOrder = []string{"checkbox", "title", "description", "status", "dueDate", "priority", "memberIds", "files"}

// EmptyBoard builds the starter board: two colored groups holding five
// tasks named after the board label.
func EmptyBoard(title, label string, createdBy *MiniUser) Board {
	first := templateTask(label+" 1", "Done", "High")
	second := templateTask(label+" 2", "Working on it", "Medium")
	third := templateTask(label+" 3", "", "")
	fourth := templateTask(label+" 4", "", "")
	fifth := templateTask(label+" 5", "", "")

	return Board{
		Title:       title,
		Description: defaultBoardDescription,
		CreatedBy:   createdBy,
		Label:       label,
		Members:     []MiniUser{},
		Groups: []Group{
			EmptyGroup(defaultGroupTitle, map[string]string{"backgroundColor": "#579bfc"}, []Task{first, second, third}),
			EmptyGroup(defaultGroupTitle, map[string]string{"backgroundColor": "#a25ddc"}, []Task{fourth, fifth}),
		},
		Activities: []Activity{},
		CmpsOrder:  append([]string(nil), DefaultCmpsOrder...),
	}
}

func EmptyGroup(title string, style map[string]string, tasks []Task) Group {
	if title == "" {
		title = defaultGroupTitle
	}
	if style == nil {
		style = map[string]string{}
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return Group{ID: NewID(), Title: title, Style: style, Tasks: tasks}
}

func EmptyTask(title string) Task {
	if title == "" {
		title = defaultTaskTitle
	}
	return templateTask(title, "", "")
}

func templateTask(title, status, priority string) Task {
	if status == "" {
		status = defaultStatus
	}
	if priority == "" {
		priority = defaultPriority
	}
	return Task{
		ID:         NewID(),
		Title:      title,
		Status:     status,
		Priority:   priority,
		MemberIDs:  []string{},
		Labels:     []string{},
		Comments:   []Comment{},
		Checklists: []Checklist{},
		Style:      map[string]string{},
	}
}
