package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeServiceSuite struct {
	suite.Suite
	ctx    context.Context
	db     *gorm.DB
	svc    *RecipeService
	images *testhelpers.MemoryImageStore
	author *models.User
	other  *models.User
	flour  *models.Ingredient
	eggs   *models.Ingredient
	sugar  *models.Ingredient
	dinner *models.Tag
	lunch  *models.Tag
}

func TestRecipeService(t *testing.T) {
	suite.Run(t, new(RecipeServiceSuite))
}

func (s *RecipeServiceSuite) SetupTest() {
	t := s.T()
	s.ctx = context.Background()
	s.db = testhelpers.SetupSQLiteDB(t)
	s.images = testhelpers.NewMemoryImageStore()
	s.svc = NewRecipeService(s.db, NewCatalogService(s.db), s.images)

	s.author = testhelpers.CreateUser(t, s.db, "author")
	s.other = testhelpers.CreateUser(t, s.db, "other")
	s.flour = testhelpers.CreateIngredient(t, s.db, "Мука", "г")
	s.eggs = testhelpers.CreateIngredient(t, s.db, "Яйца", "шт")
	s.sugar = testhelpers.CreateIngredient(t, s.db, "Сахар", "г")
	s.dinner = testhelpers.CreateTag(t, s.db, "dinner")
	s.lunch = testhelpers.CreateTag(t, s.db, "lunch")
}

// request builds a RecipeRequest the way the HTTP layer decodes it
func (s *RecipeServiceSuite) request(body map[string]interface{}) *types.RecipeRequest {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	var req types.RecipeRequest
	s.Require().NoError(json.Unmarshal(raw, &req))
	return &req
}

func (s *RecipeServiceSuite) validBody() map[string]interface{} {
	return map[string]interface{}{
		"name":         "Блины",
		"text":         "Смешать и жарить.",
		"cooking_time": 30,
		"image":        testhelpers.PNGDataURI,
		"tags":         []interface{}{s.dinner.ID},
		"ingredients": []interface{}{
			map[string]interface{}{"id": s.flour.ID, "amount": 200},
			map[string]interface{}{"id": s.eggs.ID, "amount": 3},
		},
	}
}

func (s *RecipeServiceSuite) recipeCount() int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.Recipe{}).Count(&count).Error)
	return count
}

func (s *RecipeServiceSuite) lineCount() int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.RecipeIngredient{}).Count(&count).Error)
	return count
}

func (s *RecipeServiceSuite) TestCreate() {
	before := time.Now().Add(-time.Second)
	recipe, err := s.svc.Create(s.ctx, s.author.ID, s.request(s.validBody()))
	s.Require().NoError(err)

	s.Equal("Блины", recipe.Name)
	s.Equal(30, recipe.CookingTime)
	s.Equal(s.author.ID, recipe.Author.ID)
	s.True(recipe.PubDate.After(before))
	s.NotEmpty(recipe.Image)
	s.Len(s.images.Images, 1)
	s.False(recipe.IsFavorited)
	s.False(recipe.IsInShoppingCart)

	s.Require().Len(recipe.Tags, 1)
	s.Equal("dinner", recipe.Tags[0].Slug)

	// Lines are stored by ingredient name descending
	s.Require().Len(recipe.Ingredients, 2)
	s.Equal("Яйца", recipe.Ingredients[0].Ingredient.Name)
	s.Equal(3, recipe.Ingredients[0].Amount)
	s.Equal("Мука", recipe.Ingredients[1].Ingredient.Name)
	s.Equal(200, recipe.Ingredients[1].Amount)
}

func (s *RecipeServiceSuite) TestCreateAcceptsNumericStringAmount() {
	body := s.validBody()
	body["ingredients"] = []interface{}{map[string]interface{}{"id": s.flour.ID, "amount": "150"}}

	recipe, err := s.svc.Create(s.ctx, s.author.ID, s.request(body))
	s.Require().NoError(err)
	s.Require().Len(recipe.Ingredients, 1)
	s.Equal(150, recipe.Ingredients[0].Amount)
}

func (s *RecipeServiceSuite) TestCreateRejectsIngredientDefects() {
	line := func(id interface{}, amount interface{}) map[string]interface{} {
		return map[string]interface{}{"id": id, "amount": amount}
	}
	cases := []struct {
		name        string
		ingredients interface{}
		omit        bool
		field       string
	}{
		{name: "missing field", omit: true, field: "ingredients"},
		{name: "null", ingredients: nil, field: "ingredients"},
		{name: "empty list", ingredients: []interface{}{}, field: "ingredients"},
		{name: "not a list", ingredients: "flour", field: "ingredients"},
		{name: "missing amount", ingredients: []interface{}{map[string]interface{}{"id": s.flour.ID}}, field: "amount"},
		{name: "missing id", ingredients: []interface{}{map[string]interface{}{"amount": 5}}, field: "id"},
		{name: "zero amount", ingredients: []interface{}{line(s.flour.ID, 0)}, field: "amount"},
		{name: "negative amount", ingredients: []interface{}{line(s.flour.ID, -3)}, field: "amount"},
		{name: "non-numeric amount", ingredients: []interface{}{line(s.flour.ID, "lots")}, field: "amount"},
		{name: "unknown id", ingredients: []interface{}{line(9999, 5)}, field: "ingredients"},
		{name: "non-integer id", ingredients: []interface{}{line("abc", 5)}, field: "ingredients"},
		{name: "duplicate id", ingredients: []interface{}{line(s.flour.ID, 5), line(s.flour.ID, 7)}, field: "ingredients"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			body := s.validBody()
			if tc.omit {
				delete(body, "ingredients")
			} else {
				body["ingredients"] = tc.ingredients
			}

			_, err := s.svc.Create(s.ctx, s.author.ID, s.request(body))
			var verr *ValidationError
			s.Require().ErrorAs(err, &verr)
			s.Equal(tc.field, verr.Field)
			s.Zero(s.recipeCount())
			s.Zero(s.lineCount())
			s.Empty(s.images.Images)
		})
	}
}

func (s *RecipeServiceSuite) TestIngredientChecksRunInOrder() {
	body := s.validBody()
	// First line is fine, second misses amount, third is unknown
	body["ingredients"] = []interface{}{
		map[string]interface{}{"id": s.flour.ID, "amount": 1},
		map[string]interface{}{"id": s.eggs.ID},
		map[string]interface{}{"id": 9999, "amount": 1},
	}
	_, err := s.svc.Create(s.ctx, s.author.ID, s.request(body))
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("amount", verr.Field)
}

func (s *RecipeServiceSuite) TestCreateRejectsTagDefects() {
	cases := []struct {
		name string
		tags interface{}
		omit bool
		msg  string
	}{
		{name: "missing", omit: true, msg: Format(MsgRequiredField)},
		{name: "empty", tags: []interface{}{}, msg: Format(MsgNotNonEmptyList, "tags")},
		{name: "zero", tags: []interface{}{0}, msg: Format(MsgTagNotPositive, "0")},
		{name: "negative", tags: []interface{}{-2}, msg: Format(MsgTagNotPositive, "-2")},
		{name: "string", tags: []interface{}{"1"}, msg: Format(MsgTagNotPositive, "1")},
		{name: "bool", tags: []interface{}{true}, msg: Format(MsgTagNotPositive, "true")},
		{name: "fraction", tags: []interface{}{1.5}, msg: Format(MsgTagNotPositive, "1.5")},
		{name: "duplicate", tags: []interface{}{s.dinner.ID, s.lunch.ID, s.dinner.ID}, msg: Format(MsgTagDuplicate, s.dinner.ID)},
		{name: "unknown", tags: []interface{}{s.dinner.ID, 4242}, msg: Format(MsgTagUnknown, 4242)},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			body := s.validBody()
			if tc.omit {
				delete(body, "tags")
			} else {
				body["tags"] = tc.tags
			}

			_, err := s.svc.Create(s.ctx, s.author.ID, s.request(body))
			var verr *ValidationError
			s.Require().ErrorAs(err, &verr)
			s.Equal("tags", verr.Field)
			s.Equal(tc.msg, verr.Message)
			s.Zero(s.recipeCount())
		})
	}
}

func (s *RecipeServiceSuite) TestScalarsAreCheckedBeforeTags() {
	body := s.validBody()
	body["cooking_time"] = 0
	body["tags"] = []interface{}{}

	_, err := s.svc.Create(s.ctx, s.author.ID, s.request(body))
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("cooking_time", verr.Field)
}

func (s *RecipeServiceSuite) TestCreateRejectsMissingScalars() {
	for _, field := range []string{"name", "text", "cooking_time", "image"} {
		s.Run(field, func() {
			body := s.validBody()
			delete(body, field)
			_, err := s.svc.Create(s.ctx, s.author.ID, s.request(body))
			var verr *ValidationError
			s.Require().ErrorAs(err, &verr)
			s.Equal(field, verr.Field)
		})
	}
}

func (s *RecipeServiceSuite) TestCreateRejectsTakenName() {
	testhelpers.CreateRecipe(s.T(), s.db, s.other, "Блины", nil)

	_, err := s.svc.Create(s.ctx, s.author.ID, s.request(s.validBody()))
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("name", verr.Field)
	s.Equal(int64(1), s.recipeCount())
}

func (s *RecipeServiceSuite) TestCreateRollsBackWhenLineInsertFails() {
	forced := errors.New("forced line insert failure")
	err := s.db.Callback().Create().Before("gorm:create").Register("test:fail_lines", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "recipe_ingredients" {
			tx.AddError(forced)
		}
	})
	s.Require().NoError(err)

	_, err = s.svc.Create(s.ctx, s.author.ID, s.request(s.validBody()))
	s.Require().ErrorIs(err, forced)

	s.Zero(s.recipeCount())
	s.Zero(s.lineCount())
	var links int64
	s.Require().NoError(s.db.Model(&models.RecipeTag{}).Count(&links).Error)
	s.Zero(links)
	s.Empty(s.images.Images, "uploaded image is removed with the failed write")
}

func (s *RecipeServiceSuite) TestUpdateRollsBackWhenLineInsertFails() {
	recipe := testhelpers.CreateRecipe(s.T(), s.db, s.author, "Омлет", []*models.Tag{s.lunch},
		testhelpers.Line{Ingredient: s.eggs, Amount: 2})

	forced := errors.New("forced line insert failure")
	s.Require().NoError(s.db.Callback().Create().Before("gorm:create").Register("test:fail_lines", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "recipe_ingredients" {
			tx.AddError(forced)
		}
	}))

	_, err := s.svc.Update(s.ctx, s.author.ID, recipe.ID, s.request(s.validBody()))
	s.Require().ErrorIs(err, forced)

	stored, err := s.svc.Get(s.ctx, 0, recipe.ID)
	s.Require().NoError(err)
	s.Equal("Омлет", stored.Name)
	s.Require().Len(stored.Ingredients, 1)
	s.Equal(s.eggs.ID, stored.Ingredients[0].IngredientID)
	s.Require().Len(stored.Tags, 1)
	s.Equal(s.lunch.ID, stored.Tags[0].ID)
	s.Equal(recipe.Image, stored.Image)
	s.Empty(s.images.Images, "replacement image is removed with the failed write")
}

func (s *RecipeServiceSuite) TestUpdateReplacesSets() {
	created, err := s.svc.Create(s.ctx, s.author.ID, s.request(s.validBody()))
	s.Require().NoError(err)

	body := map[string]interface{}{
		"cooking_time": 45,
		"tags":         []interface{}{s.lunch.ID},
		"ingredients":  []interface{}{map[string]interface{}{"id": s.sugar.ID, "amount": 50}},
	}
	updated, err := s.svc.Update(s.ctx, s.author.ID, created.ID, s.request(body))
	s.Require().NoError(err)

	// Absent scalar fields keep their values
	s.Equal("Блины", updated.Name)
	s.Equal(created.Image, updated.Image)
	s.Equal(45, updated.CookingTime)
	s.True(created.PubDate.Equal(updated.PubDate))

	s.Require().Len(updated.Tags, 1)
	s.Equal(s.lunch.ID, updated.Tags[0].ID)
	s.Require().Len(updated.Ingredients, 1)
	s.Equal(s.sugar.ID, updated.Ingredients[0].IngredientID)
	s.Equal(int64(1), s.lineCount())
}

func (s *RecipeServiceSuite) TestUpdateKeepsOwnName() {
	created, err := s.svc.Create(s.ctx, s.author.ID, s.request(s.validBody()))
	s.Require().NoError(err)

	_, err = s.svc.Update(s.ctx, s.author.ID, created.ID, s.request(s.validBody()))
	s.NoError(err)
}

func (s *RecipeServiceSuite) TestOnlyAuthorMayWrite() {
	recipe := testhelpers.CreateRecipe(s.T(), s.db, s.author, "Омлет", nil)

	_, err := s.svc.Update(s.ctx, s.other.ID, recipe.ID, s.request(s.validBody()))
	var forbidden *ForbiddenError
	s.ErrorAs(err, &forbidden)

	err = s.svc.Delete(s.ctx, s.other.ID, recipe.ID)
	s.ErrorAs(err, &forbidden)
	s.Equal(int64(1), s.recipeCount())
}

func (s *RecipeServiceSuite) TestMissingRecipe() {
	var notFoundErr *NotFoundError

	_, err := s.svc.Get(s.ctx, 0, 777)
	s.ErrorAs(err, &notFoundErr)

	_, err = s.svc.Update(s.ctx, s.author.ID, 777, s.request(s.validBody()))
	s.ErrorAs(err, &notFoundErr)

	s.ErrorAs(s.svc.Delete(s.ctx, s.author.ID, 777), &notFoundErr)
}

func (s *RecipeServiceSuite) TestDeleteRemovesDependents() {
	recipe := testhelpers.CreateRecipe(s.T(), s.db, s.author, "Омлет", []*models.Tag{s.lunch},
		testhelpers.Line{Ingredient: s.eggs, Amount: 2})
	testhelpers.AddFavorite(s.T(), s.db, s.other, recipe)
	testhelpers.AddToCart(s.T(), s.db, s.other, recipe)

	s.Require().NoError(s.svc.Delete(s.ctx, s.author.ID, recipe.ID))

	for _, model := range []interface{}{&models.Recipe{}, &models.RecipeIngredient{}, &models.RecipeTag{}, &models.Favorite{}, &models.Cart{}} {
		var count int64
		s.Require().NoError(s.db.Model(model).Count(&count).Error)
		s.Zero(count)
	}
	// Catalog rows survive
	var ingredients int64
	s.Require().NoError(s.db.Model(&models.Ingredient{}).Count(&ingredients).Error)
	s.Equal(int64(3), ingredients)
}

func (s *RecipeServiceSuite) TestListAnnotationsAndFilters() {
	t := s.T()
	soup := testhelpers.CreateRecipe(t, s.db, s.author, "Суп", []*models.Tag{s.lunch, s.dinner})
	salad := testhelpers.CreateRecipe(t, s.db, s.author, "Салат", []*models.Tag{s.lunch})
	cake := testhelpers.CreateRecipe(t, s.db, s.other, "Торт", nil)
	testhelpers.AddFavorite(t, s.db, s.other, soup)
	testhelpers.AddToCart(t, s.db, s.other, salad)

	all, err := s.svc.List(s.ctx, s.other.ID, types.RecipeFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]uint{soup.ID, salad.ID, cake.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})
	byID := map[uint]models.Recipe{}
	for _, r := range all {
		byID[r.ID] = r
	}
	s.True(byID[soup.ID].IsFavorited)
	s.False(byID[soup.ID].IsInShoppingCart)
	s.True(byID[salad.ID].IsInShoppingCart)
	s.False(byID[cake.ID].IsFavorited)

	favorites, err := s.svc.List(s.ctx, s.other.ID, types.RecipeFilter{IsFavorited: true})
	s.Require().NoError(err)
	s.Require().Len(favorites, 1)
	s.Equal(soup.ID, favorites[0].ID)

	cart, err := s.svc.List(s.ctx, s.other.ID, types.RecipeFilter{IsInShoppingCart: true})
	s.Require().NoError(err)
	s.Require().Len(cart, 1)
	s.Equal(salad.ID, cart[0].ID)

	// OR semantics over tags without duplicate rows
	tagged, err := s.svc.List(s.ctx, 0, types.RecipeFilter{TagSlugs: []string{"lunch", "dinner"}})
	s.Require().NoError(err)
	s.Len(tagged, 2)

	authorID := s.other.ID
	byAuthor, err := s.svc.List(s.ctx, 0, types.RecipeFilter{AuthorID: &authorID})
	s.Require().NoError(err)
	s.Require().Len(byAuthor, 1)
	s.Equal(cake.ID, byAuthor[0].ID)

	// Anonymous callers are never restricted and see false annotations
	anonymous, err := s.svc.List(s.ctx, 0, types.RecipeFilter{IsFavorited: true})
	s.Require().NoError(err)
	s.Len(anonymous, 3)
	for _, r := range anonymous {
		s.False(r.IsFavorited)
		s.False(r.IsInShoppingCart)
	}
}

func (s *RecipeServiceSuite) TestAuthorIsSubscribedAnnotation() {
	recipe := testhelpers.CreateRecipe(s.T(), s.db, s.author, "Суп", nil)
	testhelpers.Subscribe(s.T(), s.db, s.other, s.author)

	seen, err := s.svc.Get(s.ctx, s.other.ID, recipe.ID)
	s.Require().NoError(err)
	s.True(seen.Author.IsSubscribed)

	anonymous, err := s.svc.Get(s.ctx, 0, recipe.ID)
	s.Require().NoError(err)
	s.False(anonymous.Author.IsSubscribed)
}

func (s *RecipeServiceSuite) TestListOrdersByPubDateThenName() {
	t := s.T()
	late := testhelpers.CreateRecipe(t, s.db, s.author, "Борщ", nil)
	same := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	pie := testhelpers.CreateRecipe(t, s.db, s.author, "Пирог", nil)
	buns := testhelpers.CreateRecipe(t, s.db, s.author, "Булки", nil)
	for _, r := range []*models.Recipe{pie, buns} {
		s.Require().NoError(s.db.Model(r).Update("pub_date", same).Error)
	}

	list, err := s.svc.List(s.ctx, 0, types.RecipeFilter{})
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{"Булки", "Пирог", "Борщ"}, []string{list[0].Name, list[1].Name, list[2].Name})
	s.Equal(late.ID, list[2].ID)

	preview, err := s.svc.RecipesByAuthor(s.ctx, s.author.ID, 2)
	s.Require().NoError(err)
	s.Require().Len(preview, 2)
	s.Equal(buns.ID, preview[0].ID)
	s.Equal(pie.ID, preview[1].ID)
}

func (s *RecipeServiceSuite) TestShoppingList() {
	t := s.T()
	a := testhelpers.CreateRecipe(t, s.db, s.author, "A", nil,
		testhelpers.Line{Ingredient: s.flour, Amount: 200},
		testhelpers.Line{Ingredient: s.eggs, Amount: 3})
	b := testhelpers.CreateRecipe(t, s.db, s.author, "B", nil,
		testhelpers.Line{Ingredient: s.flour, Amount: 100})
	notInCart := testhelpers.CreateRecipe(t, s.db, s.author, "C", nil,
		testhelpers.Line{Ingredient: s.sugar, Amount: 10})
	testhelpers.AddToCart(t, s.db, s.other, a)
	testhelpers.AddToCart(t, s.db, s.other, b)
	testhelpers.AddToCart(t, s.db, s.author, notInCart)

	items, err := s.svc.ShoppingList(s.ctx, s.other.ID)
	s.Require().NoError(err)
	s.Equal("Мука, (г) 300\nЯйца, (шт) 3\n", FormatShoppingList(items))

	empty, err := s.svc.ShoppingList(s.ctx, testhelpers.CreateUser(t, s.db, "nobody").ID)
	s.Require().NoError(err)
	s.Empty(empty)
	s.Equal("", FormatShoppingList(empty))
}

func TestShoppingItemString(t *testing.T) {
	item := ShoppingItem{Name: "Мука", MeasurementUnit: "г", Amount: 300}
	assert.Equal(t, "Мука, (г) 300", item.String())
}

func TestRecipeConstraintsOnPostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	testhelpers.CreateRecipe(t, db, author, "Суп", nil)

	err := db.Omit("Author", "Tags", "Ingredients").Create(&models.Recipe{
		AuthorID: author.ID, Name: "Суп", Image: "x", Text: "x", CookingTime: 5,
	}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	err = db.Omit("Author", "Tags", "Ingredients").Create(&models.Recipe{
		AuthorID: author.ID, Name: "Каша", Image: "x", Text: "x", CookingTime: 0,
	}).Error
	assert.Error(t, err)

	err = db.Omit("Subscriber", "Author").Create(&models.Subscription{SubscriberID: author.ID, AuthorID: author.ID}).Error
	assert.Error(t, err)
}
