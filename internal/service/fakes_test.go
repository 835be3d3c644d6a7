package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"blogapi/internal/models"
	"blogapi/internal/store"
)

// memDB is an in-memory stand-in for the PostgreSQL stores. It enforces
// the same unique and foreign key rules, reporting them with the store
// sentinel errors.
type memDB struct {
	nextID     int64
	users      map[int64]*models.User
	profiles   map[int64]*models.Profile
	categories map[int64]*models.Category
	posts      map[int64]*models.Post
	postCats   map[int64][]int64

	// failNext makes the next repository call return this error.
	failNext error
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[int64]*models.User{},
		profiles:   map[int64]*models.Profile{},
		categories: map[int64]*models.Category{},
		posts:      map[int64]*models.Post{},
		postCats:   map[int64][]int64{},
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) fail() error {
	err := db.failNext
	db.failNext = nil
	return err
}

var errBoom = errors.New("boom")

func dupErr(constraint string) error {
	return &store.ConstraintError{Kind: store.ErrDuplicate, Constraint: constraint}
}

func fkErr(constraint string) error {
	return &store.ConstraintError{Kind: store.ErrForeignKey, Constraint: constraint}
}

// --- users ---

type memUsers struct{ db *memDB }

func (r memUsers) List(context.Context) ([]models.User, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	out := []models.User{}
	for _, u := range r.db.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	if u, ok := r.db.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	for _, u := range r.db.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r memUsers) Create(_ context.Context, email, hash string) (*models.User, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	for _, u := range r.db.users {
		if u.Email == email {
			return nil, dupErr(store.ConstraintUserEmail)
		}
	}
	now := time.Now()
	u := &models.User{ID: r.db.id(), Email: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	r.db.users[u.ID] = u
	c := *u
	return &c, nil
}

func (r memUsers) Update(_ context.Context, id int64, email, hash *string) (*models.User, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	if email != nil {
		for _, other := range r.db.users {
			if other.ID != id && other.Email == *email {
				return nil, dupErr(store.ConstraintUserEmail)
			}
		}
		u.Email = *email
	}
	if hash != nil {
		u.PasswordHash = *hash
	}
	c := *u
	return &c, nil
}

func (r memUsers) Delete(_ context.Context, id int64) (bool, error) {
	if err := r.db.fail(); err != nil {
		return false, err
	}
	if _, ok := r.db.users[id]; !ok {
		return false, nil
	}
	for _, p := range r.db.profiles {
		if p.UserID == id {
			return false, fkErr("profiles_user_id_fkey")
		}
	}
	delete(r.db.users, id)
	return true, nil
}

// --- profiles ---

type memProfiles struct{ db *memDB }

func (r memProfiles) withUser(p *models.Profile) *models.Profile {
	c := *p
	if u, ok := r.db.users[p.UserID]; ok {
		uc := *u
		c.User = &uc
	}
	return &c
}

func (r memProfiles) FindByID(_ context.Context, id int64) (*models.Profile, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	if p, ok := r.db.profiles[id]; ok {
		return r.withUser(p), nil
	}
	return nil, nil
}

func (r memProfiles) FindByUserID(_ context.Context, userID int64) (*models.Profile, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	for _, p := range r.db.profiles {
		if p.UserID == userID {
			return r.withUser(p), nil
		}
	}
	return nil, nil
}

func (r memProfiles) Exists(_ context.Context, id int64) (bool, error) {
	if err := r.db.fail(); err != nil {
		return false, err
	}
	_, ok := r.db.profiles[id]
	return ok, nil
}

func (r memProfiles) Create(_ context.Context, in models.CreateProfileInput) (*models.Profile, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	if _, ok := r.db.users[in.UserID]; !ok {
		return nil, fkErr("profiles_user_id_fkey")
	}
	for _, p := range r.db.profiles {
		if p.UserID == in.UserID {
			return nil, dupErr(store.ConstraintProfileUserID)
		}
		if p.Email == in.Email {
			return nil, dupErr(store.ConstraintProfileEmail)
		}
	}
	p := &models.Profile{
		ID: r.db.id(), Name: in.Name, LastName: in.LastName, Email: in.Email,
		Avatar: in.Avatar, UserID: in.UserID,
	}
	r.db.profiles[p.ID] = p
	c := *p
	return &c, nil
}

func (r memProfiles) Update(_ context.Context, id int64, in models.UpdateProfileInput) (*models.Profile, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	p, ok := r.db.profiles[id]
	if !ok {
		return nil, nil
	}
	if in.Email != nil {
		for _, other := range r.db.profiles {
			if other.ID != id && other.Email == *in.Email {
				return nil, dupErr(store.ConstraintProfileEmail)
			}
		}
		p.Email = *in.Email
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}
	if in.Avatar != nil {
		p.Avatar = in.Avatar
	}
	c := *p
	return &c, nil
}

// --- categories ---

type memCategories struct{ db *memDB }

func (r memCategories) List(context.Context) ([]models.Category, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	out := []models.Category{}
	for _, c := range r.db.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCategories) FindByID(_ context.Context, id int64) (*models.Category, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	if c, ok := r.db.categories[id]; ok {
		cc := *c
		return &cc, nil
	}
	return nil, nil
}

func (r memCategories) FindByName(_ context.Context, name string) (*models.Category, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	for _, c := range r.db.categories {
		if c.Name == name {
			cc := *c
			return &cc, nil
		}
	}
	return nil, nil
}

func (r memCategories) FindByIDs(_ context.Context, ids []int64) ([]models.Category, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	out := []models.Category{}
	seen := map[int64]bool{}
	for _, id := range ids {
		if c, ok := r.db.categories[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r memCategories) Exists(_ context.Context, id int64) (bool, error) {
	if err := r.db.fail(); err != nil {
		return false, err
	}
	_, ok := r.db.categories[id]
	return ok, nil
}

func (r memCategories) Create(_ context.Context, in models.CreateCategoryInput) (*models.Category, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	for _, c := range r.db.categories {
		if c.Name == in.Name {
			return nil, dupErr(store.ConstraintCategoryName)
		}
	}
	c := &models.Category{ID: r.db.id(), Name: in.Name, Description: in.Description, CoverImage: in.CoverImage}
	r.db.categories[c.ID] = c
	cc := *c
	return &cc, nil
}

func (r memCategories) Update(_ context.Context, id int64, in models.UpdateCategoryInput) (*models.Category, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	c, ok := r.db.categories[id]
	if !ok {
		return nil, nil
	}
	if in.Name != nil {
		for _, other := range r.db.categories {
			if other.ID != id && other.Name == *in.Name {
				return nil, dupErr(store.ConstraintCategoryName)
			}
		}
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = in.Description
	}
	if in.CoverImage != nil {
		c.CoverImage = in.CoverImage
	}
	cc := *c
	return &cc, nil
}

func (r memCategories) Delete(_ context.Context, id int64) (bool, error) {
	if err := r.db.fail(); err != nil {
		return false, err
	}
	if _, ok := r.db.categories[id]; !ok {
		return false, nil
	}
	for _, cats := range r.db.postCats {
		for _, cid := range cats {
			if cid == id {
				return false, fkErr("posts_categories_category_id_fkey")
			}
		}
	}
	delete(r.db.categories, id)
	return true, nil
}

// --- posts ---

type memPosts struct{ db *memDB }

func (r memPosts) load(p *models.Post, inc store.PostInclude) models.Post {
	c := *p
	if inc.Categories {
		c.Categories = []models.Category{}
		for _, cid := range r.db.postCats[p.ID] {
			if cat, ok := r.db.categories[cid]; ok {
				c.Categories = append(c.Categories, *cat)
			}
		}
	}
	if inc.Profile {
		if prof, ok := r.db.profiles[p.ProfileID]; ok {
			c.Profile = memProfiles{r.db}.withUser(prof)
		}
	}
	return c
}

func (r memPosts) sorted() []*models.Post {
	out := make([]*models.Post, 0, len(r.db.posts))
	for _, p := range r.db.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memPosts) List(_ context.Context, inc store.PostInclude) ([]models.Post, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	out := []models.Post{}
	for _, p := range r.sorted() {
		out = append(out, r.load(p, inc))
	}
	return out, nil
}

func (r memPosts) FindByID(_ context.Context, id int64, inc store.PostInclude) (*models.Post, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	p, ok := r.db.posts[id]
	if !ok {
		return nil, nil
	}
	c := r.load(p, inc)
	return &c, nil
}

func (r memPosts) Exists(_ context.Context, id int64) (bool, error) {
	if err := r.db.fail(); err != nil {
		return false, err
	}
	_, ok := r.db.posts[id]
	return ok, nil
}

func (r memPosts) ListByCategory(_ context.Context, categoryID int64, inc store.PostInclude) ([]models.Post, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	out := []models.Post{}
	for _, p := range r.sorted() {
		for _, cid := range r.db.postCats[p.ID] {
			if cid == categoryID {
				out = append(out, r.load(p, inc))
				break
			}
		}
	}
	return out, nil
}

func (r memPosts) ListByProfile(_ context.Context, profileID int64) ([]models.PostSummary, error) {
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	out := []models.PostSummary{}
	for _, p := range r.sorted() {
		if p.ProfileID != profileID {
			continue
		}
		prof := r.db.profiles[profileID]
		s := models.PostSummary{
			ID: p.ID, Title: p.Title,
			Author:     models.PostAuthor{ProfileID: profileID, UserID: prof.UserID, Email: r.db.users[prof.UserID].Email},
			Categories: []models.CategoryRef{},
		}
		for _, cid := range r.db.postCats[p.ID] {
			s.Categories = append(s.Categories, models.CategoryRef{ID: cid, Name: r.db.categories[cid].Name})
		}
		out = append(out, s)
	}
	return out, nil
}

func (r memPosts) checkCategories(ids []int64) error {
	for _, cid := range ids {
		if _, ok := r.db.categories[cid]; !ok {
			return fkErr("posts_categories_category_id_fkey")
		}
	}
	return nil
}

func (r memPosts) Create(_ context.Context, profileID int64, in models.CreatePostInput) (int64, error) {
	if err := r.db.fail(); err != nil {
		return 0, err
	}
	if _, ok := r.db.profiles[profileID]; !ok {
		return 0, fkErr("posts_profile_id_fkey")
	}
	if err := r.checkCategories(in.CategoryIDs); err != nil {
		return 0, err
	}
	draft := true
	if in.IsDraft != nil {
		draft = *in.IsDraft
	}
	p := &models.Post{
		ID: r.db.id(), Title: in.Title, Content: in.Content, CoverImage: in.CoverImage,
		Summary: in.Summary, IsDraft: draft, ProfileID: profileID,
	}
	r.db.posts[p.ID] = p
	r.db.postCats[p.ID] = append([]int64(nil), in.CategoryIDs...)
	return p.ID, nil
}

func (r memPosts) Update(_ context.Context, id int64, in models.UpdatePostInput) (bool, error) {
	if err := r.db.fail(); err != nil {
		return false, err
	}
	p, ok := r.db.posts[id]
	if !ok {
		return false, nil
	}
	if in.CategoryIDs != nil {
		if err := r.checkCategories(*in.CategoryIDs); err != nil {
			return false, err
		}
		r.db.postCats[id] = append([]int64(nil), (*in.CategoryIDs)...)
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = in.Content
	}
	if in.CoverImage != nil {
		p.CoverImage = in.CoverImage
	}
	if in.Summary != nil {
		p.Summary = in.Summary
	}
	if in.IsDraft != nil {
		p.IsDraft = *in.IsDraft
	}
	return true, nil
}

func (r memPosts) Delete(_ context.Context, id int64) (bool, error) {
	if err := r.db.fail(); err != nil {
		return false, err
	}
	if _, ok := r.db.posts[id]; !ok {
		return false, nil
	}
	delete(r.db.posts, id)
	delete(r.db.postCats, id)
	return true, nil
}

// --- collaborators ---

// plainHasher is a reversible stand-in for bcrypt.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) {
	if len(plain) > 72 {
		return "", errors.New("password too long")
	}
	return "hashed:" + plain, nil
}

func (plainHasher) Compare(hash, plain string) bool {
	return strings.TrimPrefix(hash, "hashed:") == plain && strings.HasPrefix(hash, "hashed:")
}

type fakeSigner struct{ err error }

func (f fakeSigner) Issue(profileID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("token-for-%d", profileID), nil
}

type memCache struct {
	items       []models.Category
	warm        bool
	gen         int64
	invalidated int
}

func (c *memCache) Get(context.Context) ([]models.Category, int64, bool) {
	return c.items, c.gen, c.warm
}

func (c *memCache) Set(_ context.Context, gen int64, items []models.Category) {
	if gen != c.gen {
		return
	}
	c.items, c.warm = items, true
}

func (c *memCache) Invalidate(context.Context) {
	c.items, c.warm = nil, false
	c.gen++
	c.invalidated++
}

// fixture wires every service over one memDB.
type fixture struct {
	db         *memDB
	cache      *memCache
	users      *Users
	profiles   *Profiles
	categories *Categories
	posts      *Posts
	auth       *Auth
}

func newFixture(strictUpdate bool) *fixture {
	db := newMemDB()
	cache := &memCache{}
	users := NewUsers(memUsers{db}, memProfiles{db}, plainHasher{})
	profiles := NewProfiles(memProfiles{db}, users)
	categories := NewCategories(memCategories{db}, cache)
	posts := NewPosts(memPosts{db}, profiles, categories, PostsConfig{
		StrictCategoryUpdate: strictUpdate,
		Render: func(src string) (string, error) {
			return "<p>" + src + "</p>", nil
		},
	})
	return &fixture{
		db: db, cache: cache, users: users, profiles: profiles,
		categories: categories, posts: posts,
		auth: NewAuth(users, plainHasher{}, fakeSigner{}),
	}
}

// author creates a user with a profile.
func (f *fixture) author(email string) (*models.User, *models.Profile) {
	ctx := context.Background()
	u, err := f.users.Create(ctx, models.CreateUserInput{Email: email, Password: "Str0ng!Pass"})
	if err != nil {
		panic(err)
	}
	p, err := f.profiles.Create(ctx, models.CreateProfileInput{
		Name: "Ada", LastName: "Lovelace", Email: "profile-" + email, UserID: u.ID,
	})
	if err != nil {
		panic(err)
	}
	return u, p
}

func (f *fixture) category(name string) *models.Category {
	c, err := f.categories.Create(context.Background(), models.CreateCategoryInput{Name: name})
	if err != nil {
		panic(err)
	}
	return c
}

// categoryIDs lists the ids of a post's loaded categories in order.
func categoryIDs(p *models.Post) []int64 {
	ids := make([]int64, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
