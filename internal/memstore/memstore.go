// Package memstore keeps every planning collaborator in memory.
// It backs the matcher and orchestrator tests and local dry runs.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
)

// Catalog is an in-memory food catalog that counts lookups
type Catalog struct {
	mu      sync.Mutex
	foods   map[uint]domain.FoodNutrientRecord
	Calls   int
	Err     error
	Queried [][]uint
}

func NewCatalog(foods ...domain.FoodNutrientRecord) *Catalog {
	c := &Catalog{foods: make(map[uint]domain.FoodNutrientRecord)}
	for _, f := range foods {
		c.foods[f.ID] = f
	}
	return c
}

func (c *Catalog) ResolveMany(ctx context.Context, foodIDs []uint) (map[uint]domain.FoodNutrientRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	c.Queried = append(c.Queried, append([]uint(nil), foodIDs...))
	if c.Err != nil {
		return nil, c.Err
	}
	out := make(map[uint]domain.FoodNutrientRecord, len(foodIDs))
	for _, id := range foodIDs {
		if f, ok := c.foods[id]; ok {
			out[id] = f
		}
	}
	return out, nil
}

// Templates is an in-memory template repository
type Templates struct {
	mu        sync.Mutex
	templates []domain.MealTemplate
	Calls     int
	Err       error
}

// NewTemplates fills in ingredient names and aliases from the catalog, the way
// the database repository preloads them.
func NewTemplates(catalog *Catalog, templates ...domain.MealTemplate) *Templates {
	for i := range templates {
		for j := range templates[i].Ingredients {
			ing := &templates[i].Ingredients[j]
			if f, ok := catalog.foods[ing.FoodID]; ok {
				ing.FoodName = f.Name
				ing.FoodAliases = f.Aliases
			}
		}
	}
	return &Templates{templates: templates}
}

func (t *Templates) ListTemplates(ctx context.Context, slot domain.MealSlot) ([]domain.MealTemplate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls++
	if t.Err != nil {
		return nil, t.Err
	}
	var out []domain.MealTemplate
	for _, tpl := range t.templates {
		if tpl.Slot == slot {
			out = append(out, tpl)
		}
	}
	return out, nil
}

// Members holds profiles, goals and allergies
type Members struct {
	mu        sync.Mutex
	profiles  map[uint]domain.MemberProfile
	goals     map[uint]domain.HealthGoal
	allergens map[uint][]string
}

func NewMembers() *Members {
	return &Members{
		profiles:  make(map[uint]domain.MemberProfile),
		goals:     make(map[uint]domain.HealthGoal),
		allergens: make(map[uint][]string),
	}
}

func (m *Members) Put(p domain.MemberProfile, goal *domain.HealthGoal, allergens ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
	if goal != nil {
		g := *goal
		g.MemberID = p.ID
		m.goals[p.ID] = g
	}
	m.allergens[p.ID] = allergens
}

func (m *Members) GetProfile(ctx context.Context, memberID uint) (*domain.MemberProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[memberID]
	if !ok {
		return nil, apperrors.NewNotFoundError("MEMBER_NOT_FOUND", "member", memberID)
	}
	return &p, nil
}

func (m *Members) GetActiveGoal(ctx context.Context, memberID uint) (*domain.HealthGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[memberID]
	if !ok || !g.Active {
		return nil, apperrors.NewNotFoundError("GOAL_NOT_FOUND", "active goal for member", memberID)
	}
	return &g, nil
}

func (m *Members) ListAllergenNames(ctx context.Context, memberID uint) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.allergens[memberID]...), nil
}

// Plans stores plans and meals with sequential ids
type Plans struct {
	mu     sync.Mutex
	plans  map[uint]domain.GeneratedMealPlan
	meals  map[uint]domain.PlannedMeal
	nextID uint
	Saved  int
}

func NewPlans() *Plans {
	return &Plans{
		plans: make(map[uint]domain.GeneratedMealPlan),
		meals: make(map[uint]domain.PlannedMeal),
	}
}

func (s *Plans) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Plans) SavePlan(ctx context.Context, plan *domain.GeneratedMealPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan.ID = s.id()
	for i := range plan.Meals {
		plan.Meals[i].ID = s.id()
		plan.Meals[i].PlanID = plan.ID
		s.meals[plan.Meals[i].ID] = plan.Meals[i]
	}
	stored := *plan
	stored.Meals = nil
	s.plans[plan.ID] = stored
	s.Saved++
	return nil
}

func (s *Plans) GetPlan(ctx context.Context, planID uint) (*domain.GeneratedMealPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[planID]
	if !ok {
		return nil, apperrors.NewNotFoundError("PLAN_NOT_FOUND", "plan", planID)
	}
	return s.withMeals(p), nil
}

// LatestPlan returns the member's plan with the highest id
func (s *Plans) LatestPlan(ctx context.Context, memberID uint) (*domain.GeneratedMealPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *domain.GeneratedMealPlan
	for _, p := range s.plans {
		if p.MemberID == memberID && (latest == nil || p.ID > latest.ID) {
			p := p
			latest = &p
		}
	}
	if latest == nil {
		return nil, apperrors.NewNotFoundError("PLAN_NOT_FOUND", "plan of member", memberID)
	}
	return s.withMeals(*latest), nil
}

// withMeals attaches the current meal rows in save order. Callers hold mu.
func (s *Plans) withMeals(p domain.GeneratedMealPlan) *domain.GeneratedMealPlan {
	p.Meals = nil
	for _, m := range s.meals {
		if m.PlanID == p.ID {
			p.Meals = append(p.Meals, m)
		}
	}
	sort.Slice(p.Meals, func(i, j int) bool { return p.Meals[i].ID < p.Meals[j].ID })
	return &p
}

func (s *Plans) GetMeal(ctx context.Context, mealID uint) (*domain.PlannedMeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meals[mealID]
	if !ok {
		return nil, apperrors.NewNotFoundError("MEAL_NOT_FOUND", "meal", mealID)
	}
	return &m, nil
}

func (s *Plans) UpdateMeal(ctx context.Context, meal *domain.PlannedMeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meals[meal.ID]; !ok {
		return apperrors.NewNotFoundError("MEAL_NOT_FOUND", "meal", meal.ID)
	}
	s.meals[meal.ID] = *meal
	return nil
}
