// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package sandbox

import (
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dentuss/Bazinga-Comics/internal/admin"
	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/commerce"
	"github.com/dentuss/Bazinga-Comics/internal/news"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/constants"
	"github.com/dentuss/Bazinga-Comics/internal/platform/sec"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
	"github.com/dentuss/Bazinga-Comics/pkg/pointer"
)

// Layouts of the backend's LocalDate and LocalDateTime values.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// FreePlan is the subscription type of a new account.
const FreePlan = "Free"

// Account is a registered user.
type Account struct {
	ID                     int64
	Username               string
	Email                  string
	PasswordHash           string
	Role                   sec.UserRole
	SubscriptionType       string
	SubscriptionExpiration *string

	FirstName   *string
	LastName    *string
	DateOfBirth *string
	CreatedAt   string
	UpdatedAt   string
}

// profile renders the account for the admin screens.
func (a *Account) profile() admin.User {
	return admin.User{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		DateOfBirth: a.DateOfBirth,
		Role:        a.Role,
		CreatedAt:   pointer.To(a.CreatedAt),
		UpdatedAt:   pointer.To(a.UpdatedAt),
	}
}

// matches reports whether term occurs in any searchable field, ignoring case.
func (a *Account) matches(term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{a.Username, a.Email, pointer.Val(a.FirstName), pointer.Val(a.LastName)} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// session renders the account as the login/register response.
func (a *Account) session(token string) auth.Session {
	return auth.Session{
		Token:                  token,
		UserID:                 a.ID,
		Username:               a.Username,
		Email:                  a.Email,
		Role:                   a.Role,
		SubscriptionType:       pointer.To(a.SubscriptionType),
		SubscriptionExpiration: a.SubscriptionExpiration,
	}
}

// newsEntry keeps the parsed expiry next to the wire post.
type newsEntry struct {
	post    news.Post
	created time.Time
	expires time.Time
}

// Store is the sandbox's in-memory database. Every method is atomic.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	nextID int64

	comics     map[int64]catalog.Comic
	comicOrder []int64

	// Picker lists keep their own id sequences.
	categories []catalog.Category
	conditions []catalog.Condition

	accounts map[int64]*Account
	byEmail  map[string]int64

	carts     map[int64][]commerce.CartItem
	wishlists map[int64][]commerce.WishlistItem
	libraries map[int64][]commerce.LibraryItem

	news []newsEntry
}

// NewStore creates an empty store.
func NewStore(now func() time.Time) *Store {
	return &Store{
		now:       now,
		comics:    make(map[int64]catalog.Comic),
		accounts:  make(map[int64]*Account),
		byEmail:   make(map[string]int64),
		carts:     make(map[int64][]commerce.CartItem),
		wishlists: make(map[int64][]commerce.WishlistItem),
		libraries: make(map[int64][]commerce.LibraryItem),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// # Catalog

// PutComic inserts or replaces a comic. A zero ID is assigned one.
func (s *Store) PutComic(comic catalog.Comic) catalog.Comic {
	s.mu.Lock()
	defer s.mu.Unlock()

	if comic.ID == 0 {
		comic.ID = s.id()
	} else if comic.ID > s.nextID {
		s.nextID = comic.ID
	}
	if _, exists := s.comics[comic.ID]; !exists {
		s.comicOrder = append(s.comicOrder, comic.ID)
	}
	s.comics[comic.ID] = comic
	return comic
}

// Comics returns the catalog in insertion order, redacted comics included.
func (s *Store) Comics() []catalog.Comic {
	s.mu.Lock()
	defer s.mu.Unlock()

	comics := make([]catalog.Comic, 0, len(s.comicOrder))
	for _, id := range s.comicOrder {
		comics = append(comics, s.comics[id])
	}
	return comics
}

// VisibleComics returns the storefront catalog: every comic not redacted.
func (s *Store) VisibleComics() []catalog.Comic {
	return slices.DeleteFunc(s.Comics(), func(comic catalog.Comic) bool { return comic.Redacted })
}

// AdminComics returns the whole catalog, newest first.
func (s *Store) AdminComics() []catalog.Comic {
	comics := s.Comics()
	slices.SortStableFunc(comics, func(a, b catalog.Comic) int { return b.CreatedTime().Compare(a.CreatedTime()) })
	return comics
}

// PutCategory returns the category called name, creating it if needed.
func (s *Store) PutCategory(name string) catalog.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, category := range s.categories {
		if strings.EqualFold(category.Name, name) {
			return category
		}
	}
	category := catalog.Category{ID: int64(len(s.categories) + 1), Name: name}
	s.categories = append(s.categories, category)
	return category
}

// Categories returns the genre picker list.
func (s *Store) Categories() []catalog.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

// PutCondition returns the condition with description, creating it if needed.
func (s *Store) PutCondition(description string) catalog.Condition {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, condition := range s.conditions {
		if strings.EqualFold(condition.Description, description) {
			return condition
		}
	}
	condition := catalog.Condition{ID: int64(len(s.conditions) + 1), Description: description}
	s.conditions = append(s.conditions, condition)
	return condition
}

// Conditions returns the print-grade picker list.
func (s *Store) Conditions() []catalog.Condition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.conditions)
}

// CreateComic stores a validated draft under a fresh id.
func (s *Store) CreateComic(draft admin.ComicDraft) (catalog.Comic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var comic catalog.Comic
	if err := s.applyDraftLocked(&comic, draft); err != nil {
		return catalog.Comic{}, err
	}
	comic.ID = s.id()
	comic.CreatedAt = comic.UpdatedAt

	s.comics[comic.ID] = comic
	s.comicOrder = append(s.comicOrder, comic.ID)
	return comic, nil
}

// UpdateComic replaces every editable field of a comic. Lines that embed
// the comic see the new values.
func (s *Store) UpdateComic(comicID int64, draft admin.ComicDraft) (catalog.Comic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comic, err := s.comic(comicID)
	if err != nil {
		return catalog.Comic{}, err
	}
	if err := s.applyDraftLocked(&comic, draft); err != nil {
		return catalog.Comic{}, err
	}
	s.saveComicLocked(comic)
	return comic, nil
}

// SetComicRedacted hides a comic from the storefront or restores it.
func (s *Store) SetComicRedacted(comicID int64, redacted bool) (catalog.Comic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comic, err := s.comic(comicID)
	if err != nil {
		return catalog.Comic{}, err
	}
	comic.Redacted = redacted
	comic.UpdatedAt = pointer.To(s.now().Format(dateTimeLayout))
	s.saveComicLocked(comic)
	return comic, nil
}

// DeleteComic removes a redacted comic and every line referencing it.
func (s *Store) DeleteComic(comicID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comic, err := s.comic(comicID)
	if err != nil {
		return err
	}
	if !comic.Redacted {
		return apperr.ValidationError("Only redacted comics can be deleted")
	}

	delete(s.comics, comicID)
	s.comicOrder = slices.DeleteFunc(s.comicOrder, func(id int64) bool { return id == comicID })
	for userID := range s.carts {
		s.carts[userID] = slices.DeleteFunc(s.carts[userID], func(item commerce.CartItem) bool { return item.Comic.ID == comicID })
	}
	for userID := range s.wishlists {
		s.wishlists[userID] = slices.DeleteFunc(s.wishlists[userID], func(item commerce.WishlistItem) bool { return item.Comic.ID == comicID })
	}
	for userID := range s.libraries {
		s.libraries[userID] = slices.DeleteFunc(s.libraries[userID], func(item commerce.LibraryItem) bool { return item.Comic.ID == comicID })
	}
	return nil
}

// applyDraftLocked copies draft onto comic after resolving its references.
// A zero comic.ID checks ISBN uniqueness against the whole catalog.
func (s *Store) applyDraftLocked(comic *catalog.Comic, draft admin.ComicDraft) error {
	var category *catalog.Category
	if draft.CategoryID != nil {
		index := slices.IndexFunc(s.categories, func(c catalog.Category) bool { return c.ID == *draft.CategoryID })
		if index < 0 {
			return apperr.NotFound("Category")
		}
		category = pointer.To(s.categories[index])
	}

	var condition *catalog.Condition
	if draft.ConditionID != nil {
		index := slices.IndexFunc(s.conditions, func(c catalog.Condition) bool { return c.ID == *draft.ConditionID })
		if index < 0 {
			return apperr.NotFound("Condition")
		}
		condition = pointer.To(s.conditions[index])
	}

	if draft.Isbn != nil {
		for id, other := range s.comics {
			if id != comic.ID && other.Isbn != nil && strings.EqualFold(*other.Isbn, *draft.Isbn) {
				return apperr.Conflict("ISBN is already in use")
			}
		}
	}

	comic.Title = draft.Title
	comic.Author = draft.Author
	comic.Isbn = draft.Isbn
	comic.Description = draft.Description
	comic.MainCharacter = draft.MainCharacter
	comic.Series = draft.Series
	comic.PublishedYear = draft.PublishedYear
	comic.Price = draft.Price
	comic.Image = draft.Image
	comic.ComicType = draft.EffectiveComicType()
	comic.Category = category
	comic.Condition = condition
	comic.UpdatedAt = pointer.To(s.now().Format(dateTimeLayout))
	return nil
}

// saveComicLocked stores comic and refreshes the copies embedded in lines.
func (s *Store) saveComicLocked(comic catalog.Comic) {
	s.comics[comic.ID] = comic
	for _, lines := range s.carts {
		for i := range lines {
			if lines[i].Comic.ID == comic.ID {
				lines[i].Comic = comic
			}
		}
	}
	for _, items := range s.wishlists {
		for i := range items {
			if items[i].Comic.ID == comic.ID {
				items[i].Comic = comic
			}
		}
	}
	for _, items := range s.libraries {
		for i := range items {
			if items[i].Comic.ID == comic.ID {
				items[i].Comic = comic
			}
		}
	}
}

func (s *Store) comic(id int64) (catalog.Comic, error) {
	comic, ok := s.comics[id]
	if !ok {
		return catalog.Comic{}, apperr.NotFound("Comic")
	}
	return comic, nil
}

// # Accounts

// CreateAccount registers a user. Emails are unique, case-insensitively.
func (s *Store) CreateAccount(username, email, passwordHash string, role sec.UserRole) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.createAccountLocked(username, email, passwordHash, role)
	if err != nil {
		return nil, err
	}
	copied := *created
	return &copied, nil
}

func (s *Store) createAccountLocked(username, email, passwordHash string, role sec.UserRole) (*Account, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if _, taken := s.byEmail[key]; taken {
		return nil, apperr.ValidationError("Email is already registered")
	}

	stamp := s.now().Format(dateTimeLayout)
	created := &Account{
		ID:               s.id(),
		Username:         username,
		Email:            strings.TrimSpace(email),
		PasswordHash:     passwordHash,
		Role:             role,
		SubscriptionType: FreePlan,
		CreatedAt:        stamp,
		UpdatedAt:        stamp,
	}
	s.accounts[created.ID] = created
	s.byEmail[key] = created.ID
	return created, nil
}

// Users lists accounts by username. A non-blank term filters on username,
// email, first and last name.
func (s *Store) Users(term string) []admin.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]admin.User, 0, len(s.accounts))
	for _, account := range s.accounts {
		if term == "" || account.matches(term) {
			users = append(users, account.profile())
		}
	}
	slices.SortFunc(users, func(a, b admin.User) int { return strings.Compare(a.Username, b.Username) })
	return users
}

// CreateUser opens an account on behalf of an admin. Both the username and
// the email must be unused.
func (s *Store) CreateUser(request admin.UserRequest, passwordHash string) (admin.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTakenLocked(request.Username, 0) {
		return admin.User{}, apperr.ValidationError("Username is already taken")
	}
	account, err := s.createAccountLocked(request.Username, request.Email, passwordHash, request.RoleOrDefault())
	if err != nil {
		return admin.User{}, err
	}
	account.FirstName = request.FirstName
	account.LastName = request.LastName
	account.DateOfBirth = request.DateOfBirth
	return account.profile(), nil
}

// UpdateUser applies the fields present in request. An empty passwordHash
// keeps the current password.
func (s *Store) UpdateUser(userID int64, request admin.UserRequest, passwordHash string) (admin.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return admin.User{}, apperr.NotFound("User")
	}

	if request.Email != "" {
		key := strings.ToLower(request.Email)
		if owner, taken := s.byEmail[key]; taken && owner != userID {
			return admin.User{}, apperr.ValidationError("Email is already registered")
		}
	}
	if request.Username != "" && s.usernameTakenLocked(request.Username, userID) {
		return admin.User{}, apperr.ValidationError("Username is already taken")
	}

	if request.Email != "" {
		delete(s.byEmail, strings.ToLower(account.Email))
		account.Email = request.Email
		s.byEmail[strings.ToLower(request.Email)] = userID
	}
	if request.Username != "" {
		account.Username = request.Username
	}
	if passwordHash != "" {
		account.PasswordHash = passwordHash
	}
	if request.FirstName != nil {
		account.FirstName = request.FirstName
	}
	if request.LastName != nil {
		account.LastName = request.LastName
	}
	if request.DateOfBirth != nil {
		account.DateOfBirth = request.DateOfBirth
	}
	if request.Role != "" {
		account.Role = request.RoleOrDefault()
	}
	account.UpdatedAt = s.now().Format(dateTimeLayout)
	return account.profile(), nil
}

func (s *Store) usernameTakenLocked(username string, except int64) bool {
	for id, account := range s.accounts {
		if id != except && strings.EqualFold(account.Username, username) {
			return true
		}
	}
	return false
}

// AccountByEmail looks up a user for login.
func (s *Store) AccountByEmail(email string) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, false
	}
	copied := *s.accounts[id]
	return &copied, true
}

func (s *Store) account(userID int64) (*Account, error) {
	found, ok := s.accounts[userID]
	if !ok {
		return nil, apperr.Unauthorized("Unknown account")
	}
	return found, nil
}

// Subscribe records a plan purchase. planType is "Premium" or "Unlimited";
// cycle is monthly or yearly.
func (s *Store) Subscribe(userID int64, planType string, cycle pricing.BillingCycle) (auth.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.account(userID)
	if err != nil {
		return auth.Subscription{}, err
	}
	if user.Role != sec.RoleUser {
		return auth.Subscription{}, apperr.Forbidden("Only shopper accounts can subscribe")
	}

	today := s.now()
	expiration := today.AddDate(0, 1, 0)
	if cycle == pricing.Yearly {
		expiration = today.AddDate(1, 0, 0)
	}

	user.SubscriptionType = planType
	user.SubscriptionExpiration = pointer.To(expiration.Format(dateLayout))

	return auth.Subscription{
		SubscriptionType:       user.SubscriptionType,
		SubscriptionExpiration: user.SubscriptionExpiration,
	}, nil
}

// # Cart

// Cart returns the user's cart lines.
func (s *Store) Cart(userID int64) []commerce.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked(userID)
}

func (s *Store) cartLocked(userID int64) []commerce.CartItem {
	return append([]commerce.CartItem{}, s.carts[userID]...)
}

// AddToCart adds quantity copies. Digital exclusives always go in as
// DIGITAL, and an existing line of the same format is incremented. The unit
// price is recomputed for the user's current tier.
func (s *Store) AddToCart(userID, comicID int64, quantity int, requested pricing.PurchaseType) ([]commerce.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.account(userID)
	if err != nil {
		return nil, err
	}
	comic, err := s.comic(comicID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		quantity = 1
	}

	purchaseType := pricing.EffectivePurchaseType(comic.ComicType, requested)
	tier := user.session("").Tier(s.now())
	unitPrice := roundCents(pricing.UnitPrice(comic.BasePrice(), purchaseType, tier))

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].Comic.ID == comicID && lines[i].PurchaseType == purchaseType {
			lines[i].Quantity += quantity
			lines[i].UnitPrice = unitPrice
			return s.cartLocked(userID), nil
		}
	}

	s.carts[userID] = append(lines, commerce.CartItem{
		ID:           s.id(),
		Comic:        comic,
		Quantity:     quantity,
		PurchaseType: purchaseType,
		UnitPrice:    unitPrice,
	})
	return s.cartLocked(userID), nil
}

// UpdateCartItem sets a line's quantity; zero or less deletes the line.
func (s *Store) UpdateCartItem(userID, cartItemID int64, quantity int) ([]commerce.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	index := slices.IndexFunc(lines, func(item commerce.CartItem) bool { return item.ID == cartItemID })
	if index < 0 {
		return nil, apperr.NotFound("Cart item")
	}

	if quantity <= 0 {
		s.carts[userID] = slices.Delete(lines, index, index+1)
	} else {
		lines[index].Quantity = quantity
	}
	return s.cartLocked(userID), nil
}

// RemoveCartItem deletes a line if the user owns it.
func (s *Store) RemoveCartItem(userID, cartItemID int64) []commerce.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[userID] = slices.DeleteFunc(s.carts[userID], func(item commerce.CartItem) bool {
		return item.ID == cartItemID
	})
	return s.cartLocked(userID)
}

// ClearCart empties the user's cart.
func (s *Store) ClearCart(userID int64) []commerce.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return []commerce.CartItem{}
}

// # Wishlist

// Wishlist returns the user's saved comics.
func (s *Store) Wishlist(userID int64) []commerce.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]commerce.WishlistItem{}, s.wishlists[userID]...)
}

// AddToWishlist saves a comic once.
func (s *Store) AddToWishlist(userID, comicID int64) ([]commerce.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comic, err := s.comic(comicID)
	if err != nil {
		return nil, err
	}

	items := s.wishlists[userID]
	if !slices.ContainsFunc(items, func(item commerce.WishlistItem) bool { return item.Comic.ID == comicID }) {
		s.wishlists[userID] = append(items, commerce.WishlistItem{ID: s.id(), Comic: comic})
	}
	return append([]commerce.WishlistItem{}, s.wishlists[userID]...), nil
}

// RemoveFromWishlist drops a comic from the wishlist.
func (s *Store) RemoveFromWishlist(userID, comicID int64) ([]commerce.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.comic(comicID); err != nil {
		return nil, err
	}

	s.wishlists[userID] = slices.DeleteFunc(s.wishlists[userID], func(item commerce.WishlistItem) bool {
		return item.Comic.ID == comicID
	})
	return append([]commerce.WishlistItem{}, s.wishlists[userID]...), nil
}

// # Library

// Library returns the user's digital comics.
func (s *Store) Library(userID int64) []commerce.LibraryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]commerce.LibraryItem{}, s.libraries[userID]...)
}

// AddToLibrary grants a comic. Granting an owned comic changes nothing.
func (s *Store) AddToLibrary(userID, comicID int64) ([]commerce.LibraryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comic, err := s.comic(comicID)
	if err != nil {
		return nil, err
	}

	items := s.libraries[userID]
	if !slices.ContainsFunc(items, func(item commerce.LibraryItem) bool { return item.Comic.ID == comicID }) {
		s.libraries[userID] = append(items, commerce.LibraryItem{ID: s.id(), Comic: comic})
	}
	return append([]commerce.LibraryItem{}, s.libraries[userID]...), nil
}

// # News

// News returns live posts, newest first. Expired posts are purged.
func (s *Store) News() []news.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.news = slices.DeleteFunc(s.news, func(entry newsEntry) bool { return !entry.expires.After(now) })

	live := slices.Clone(s.news)
	slices.SortStableFunc(live, func(a, b newsEntry) int { return b.created.Compare(a.created) })

	posts := make([]news.Post, 0, len(live))
	for _, entry := range live {
		posts = append(posts, entry.post)
	}
	return posts
}

// CreateNews publishes a post as userID.
func (s *Store) CreateNews(userID int64, draft news.Draft) (news.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	author, err := s.account(userID)
	if err != nil {
		return news.Post{}, err
	}

	created := s.now()
	expires := created.Add(constants.NewsTTL)
	post := news.Post{
		ID:             s.id(),
		Title:          draft.Title,
		Content:        draft.Content,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		AuthorRole:     string(author.Role),
		CreatedAt:      created.Format(dateTimeLayout),
		ExpiresAt:      expires.Format(dateTimeLayout),
	}
	s.news = append(s.news, newsEntry{post: post, created: created, expires: expires})
	return post, nil
}

// roundCents mirrors the backend's two-decimal price column.
func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
