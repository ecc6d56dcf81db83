package seed

// Bundle is one seed file: an optional admin account and a subject tree.
type Bundle struct {
	Admin    *Admin    `yaml:"admin"`
	Subjects []Subject `yaml:"subjects"`
}

type Admin struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Subject struct {
	Name        string   `yaml:"name"`
	Code        string   `yaml:"code"`
	Description string   `yaml:"description"`
	Syllabus    string   `yaml:"syllabus"`
	Core        *bool    `yaml:"core"`
	Weightage   *float64 `yaml:"weightage"`
	Topics      []Topic  `yaml:"topics"`
}

// Topic nests its subtopics and the questions filed under it.
type Topic struct {
	Name        string     `yaml:"name"`
	Code        string     `yaml:"code"`
	Description string     `yaml:"description"`
	Weightage   *float64   `yaml:"weightage"`
	Resources   []Resource `yaml:"resources"`
	Topics      []Topic    `yaml:"topics"`
	Questions   []Question `yaml:"questions"`
}

type Resource struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	Type  string `yaml:"type"`
	Free  *bool  `yaml:"free"`
}

type Option struct {
	Text        string `yaml:"text"`
	Explanation string `yaml:"explanation"`
}

type Question struct {
	Text          string   `yaml:"text"`
	Options       []Option `yaml:"options"`
	CorrectOption int      `yaml:"correct_option"`
	Explanation   string   `yaml:"explanation"`
	Difficulty    string   `yaml:"difficulty"`
	Year          int      `yaml:"year"`
	Month         string   `yaml:"month"`
	Paper         string   `yaml:"paper"`
	Number        int      `yaml:"number"`
	AnswerKey     string   `yaml:"answer_key"`
	AnswerKeyLink string   `yaml:"answer_key_link"`
	Tags          []string `yaml:"tags"`
}

// Report counts what Apply did.
type Report struct {
	AdminCreated     bool
	SubjectsCreated  int
	SubjectsSkipped  int
	TopicsCreated    int
	QuestionsCreated int
}
