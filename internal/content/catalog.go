package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed data
var embedded embed.FS

// ErrNotFound is returned when a lesson or test id is unknown.
var ErrNotFound = errors.New("content not found")

// Catalog is the immutable set of lessons and tests the app serves.
type Catalog struct {
	lessons []Lesson
	tests   []Test
}

// Embedded loads the catalog shipped with the binary.
func Embedded() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads a catalog from a directory laid out like the embedded one:
// lessons/*.yaml and tests/*.yaml.
func LoadDir(dir string) (*Catalog, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	return Load(os.DirFS(dir))
}

// Load reads and validates every lesson and test in fsys. Files are read in
// name order, so a numeric prefix (01-messenger-basic.yaml) sets the order
// lessons are listed in.
func Load(fsys fs.FS) (*Catalog, error) {
	lessonSchema, testSchema, err := compiledSchemas()
	if err != nil {
		return nil, fmt.Errorf("compile content schemas: %w", err)
	}

	c := &Catalog{}

	lessonFiles, err := yamlFiles(fsys, "lessons")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, name := range lessonFiles {
		var l Lesson
		if err := decodeFile(fsys, name, lessonSchema, &l); err != nil {
			return nil, err
		}
		if err := checkLesson(&l); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("%s: duplicate lesson id %q", name, l.ID)
		}
		seen[l.ID] = true
		c.lessons = append(c.lessons, l)
	}

	testFiles, err := yamlFiles(fsys, "tests")
	if err != nil {
		return nil, err
	}
	for _, name := range testFiles {
		var t Test
		if err := decodeFile(fsys, name, testSchema, &t); err != nil {
			return nil, err
		}
		if err := checkTest(&t); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		c.tests = append(c.tests, t)
	}

	return c, nil
}

func yamlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := path.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			names = append(names, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(names)
	return names, nil
}

func decodeFile(fsys fs.FS, name string, schema *jsonschema.Schema, v any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if err := validateDocument(schema, doc); err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func checkLesson(l *Lesson) error {
	if len(l.Steps) == 0 {
		return errors.New("lesson has no steps")
	}
	if first := l.Steps[0].Action; first != ActionIntro {
		return fmt.Errorf("first step must be %q, got %q", ActionIntro, first)
	}
	if last := l.Steps[len(l.Steps)-1].Action; last != ActionComplete {
		return fmt.Errorf("last step must be %q, got %q", ActionComplete, last)
	}
	for i, s := range l.Steps[1 : len(l.Steps)-1] {
		if s.Action == ActionIntro || s.Action == ActionComplete {
			return fmt.Errorf("step %d: %q is reserved for the first or last step", i+1, s.Action)
		}
	}
	return nil
}

func checkTest(t *Test) error {
	ids := make(map[int]bool, len(t.Questions))
	for _, q := range t.Questions {
		if ids[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		ids[q.ID] = true
		if q.Type == QuestionSingle && len(q.Correct) != 1 {
			return fmt.Errorf("question %d: single question needs exactly one answer", q.ID)
		}
		for _, idx := range q.Correct {
			if idx < 0 || idx >= len(q.Options) {
				return fmt.Errorf("question %d: answer %d out of range", q.ID, idx)
			}
		}
	}
	return nil
}

// Lessons returns every lesson in catalog order.
func (c *Catalog) Lessons() []Lesson {
	return c.lessons
}

// Filter returns the lessons of the given level; an empty level means all.
func (c *Catalog) Filter(level Level) []Lesson {
	if level == "" {
		return c.lessons
	}
	var out []Lesson
	for _, l := range c.lessons {
		if l.Level == level {
			out = append(out, l)
		}
	}
	return out
}

// Lesson looks a lesson up by id.
func (c *Catalog) Lesson(id string) (*Lesson, error) {
	for i := range c.lessons {
		if c.lessons[i].ID == id {
			return &c.lessons[i], nil
		}
	}
	return nil, fmt.Errorf("lesson %q: %w", id, ErrNotFound)
}

// LessonForTopic returns the first lesson whose id starts with topic.
func (c *Catalog) LessonForTopic(topic string) (*Lesson, error) {
	for i := range c.lessons {
		if strings.HasPrefix(c.lessons[i].ID, topic) {
			return &c.lessons[i], nil
		}
	}
	return nil, fmt.Errorf("lesson for topic %q: %w", topic, ErrNotFound)
}

// Tests returns every test in catalog order.
func (c *Catalog) Tests() []Test {
	return c.tests
}

// Test looks a test up by id.
func (c *Catalog) Test(id string) (*Test, error) {
	for i := range c.tests {
		if c.tests[i].ID == id {
			return &c.tests[i], nil
		}
	}
	return nil, fmt.Errorf("test %q: %w", id, ErrNotFound)
}

// TestForLesson returns the test whose topic matches the lesson id prefix.
func (c *Catalog) TestForLesson(lessonID string) (*Test, error) {
	topic := Topic(lessonID)
	for i := range c.tests {
		if c.tests[i].Topic == topic {
			return &c.tests[i], nil
		}
	}
	return nil, fmt.Errorf("test for %q: %w", lessonID, ErrNotFound)
}
