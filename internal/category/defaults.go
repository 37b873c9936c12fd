package category

// defaultCategories is the built-in table used when no categories file is configured.
var defaultCategories = []Category{
	{
		Name:     "Sport",
		Emoji:    "🏸",
		Priority: 1,
		Keywords: []string{"badminton", "gym", "sport", "run", "running", "swimming", "yoga", "cycling", "walk"},
	},
	{
		Name:     "Study",
		Emoji:    "📘",
		Priority: 1,
		Keywords: []string{
			"english", "study", "learn", "course", "reading", "homework", "practice",
			"revision", "class", "lesson", "ielts", "learning", "học", "lớp",
		},
	},
	{
		Name:     "Meeting",
		Emoji:    "📞",
		Priority: 1,
		Keywords: []string{"meeting", "call", "sync", "discussion", "zoom", "team", "conference", "review"},
	},
	{
		Name:     "Personal",
		Emoji:    "🧠",
		Priority: 10,
		Keywords: []string{"personal", "rest", "family", "relax", "nap", "meditation", "shower", "eat", "meal", "break"},
	},
	{
		Name:     "Couple",
		Emoji:    "💞",
		Priority: 100,
		Keywords: []string{
			"family time", "private time", "private time (shower)", "private time (massage)",
			"couple", "couple time", "couple time (shower)", "couple time (massage)",
			"date night", "bonding", "fb", "pt", "trả bài", "sinh hoạt", "date", "anniversary",
		},
	},
	{
		Name:     "Household",
		Emoji:    "🏠",
		Priority: 1,
		Keywords: []string{
			"clean", "cleaning", "dọn", "rửa", "xếp", "quần áo", "chén", "nhà cửa", "dọn dẹp",
			"laundry", "wash", "fold", "tidy", "housework",
		},
	},
	{
		Name:     "Work",
		Emoji:    "💼",
		Priority: 1,
		Keywords: []string{"project", "task", "work", "deadline", "coding", "development", "review", "report"},
	},
	{
		Name:     "Travel",
		Emoji:    "✈️",
		Priority: 1,
		Keywords: []string{"travel", "trip", "flight", "holiday", "tour", "commute", "ride"},
	},
}

// DefaultTable returns the built-in category table.
func DefaultTable() *Table {
	t, err := NewTable(defaultCategories)
	if err != nil {
		panic("category: invalid built-in table: " + err.Error())
	}
	return t
}
