package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/careguardpe-bit/careguard-backend/internal/model"
	"github.com/careguardpe-bit/careguard-backend/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ── In-memory UsuarioRepository stub ─────────────────────────────────────────

type stubUsuarioRepo struct {
	mu      sync.Mutex
	byEmail map[string]*model.Usuario
	paises  map[int64]string
	nextID  int64
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{
		byEmail: make(map[string]*model.Usuario),
		paises:  map[int64]string{1: "Perú", 2: "Chile", 3: "Colombia", 4: "Argentina", 5: "México", 6: "Ecuador"},
	}
}

func (r *stubUsuarioRepo) Upsert(_ context.Context, u *model.Usuario) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.paises[u.CountryID]; !ok {
		return false, &pgconn.PgError{Code: "23503", ConstraintName: "users_country_id_fkey"}
	}
	now := time.Now()
	if existing, ok := r.byEmail[u.Email]; ok {
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
		u.UpdatedAt = now
		cloned := *u
		r.byEmail[u.Email] = &cloned
		return false, nil
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	cloned := *u
	r.byEmail[u.Email] = &cloned
	return true, nil
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *u
	return &cloned, nil
}

func (r *stubUsuarioRepo) FindByEmailConPais(ctx context.Context, email string) (*model.UsuarioConPais, error) {
	u, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	name := r.paises[u.CountryID]
	return &model.UsuarioConPais{Usuario: *u, CountryName: &name}, nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id int64) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── In-memory DocumentoRepository stub ───────────────────────────────────────

type stubDocumentoRepo struct {
	usuarios *stubUsuarioRepo
	rows     []model.Documento
	nextID   int64
	failNext error
}

func newStubDocumentoRepo(usuarios *stubUsuarioRepo) *stubDocumentoRepo {
	return &stubDocumentoRepo{usuarios: usuarios}
}

func (r *stubDocumentoRepo) Reemplazar(_ context.Context, d *model.Documento) ([]model.Documento, error) {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return nil, err
	}
	var previos, kept []model.Documento
	for _, row := range r.rows {
		if row.UserID == d.UserID && row.DocumentType == d.DocumentType {
			previos = append(previos, row)
			continue
		}
		kept = append(kept, row)
	}
	r.nextID++
	d.ID = r.nextID
	d.UploadedAt = time.Now()
	r.rows = append(kept, *d)
	return previos, nil
}

func (r *stubDocumentoRepo) ListByEmail(ctx context.Context, email string) ([]model.Documento, error) {
	list := []model.Documento{}
	u, err := r.usuarios.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return list, nil
	}
	for _, row := range r.rows {
		if row.UserID == u.ID {
			list = append(list, row)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *stubDocumentoRepo) ReferencedFilenames(_ context.Context, names []string) (map[string]bool, error) {
	refs := make(map[string]bool)
	for _, n := range names {
		for _, row := range r.rows {
			if row.Filename == n {
				refs[n] = true
			}
		}
	}
	return refs, nil
}

var _ repository.DocumentoRepository = (*stubDocumentoRepo)(nil)

// ── In-memory PostulacionRepository stub ─────────────────────────────────────

type stubPostulacionRepo struct {
	usuarios *stubUsuarioRepo
	rows     []model.Postulacion
	refs     map[string]bool
	nextID   int64
	creates  int
}

func newStubPostulacionRepo(usuarios *stubUsuarioRepo) *stubPostulacionRepo {
	return &stubPostulacionRepo{usuarios: usuarios, refs: make(map[string]bool)}
}

func (r *stubPostulacionRepo) Create(_ context.Context, p *model.Postulacion) error {
	r.creates++
	if r.refs[p.ReferenceNumber] {
		return &pgconn.PgError{Code: "23505", ConstraintName: "submissions_reference_number_key"}
	}
	r.refs[p.ReferenceNumber] = true
	r.nextID++
	p.ID = r.nextID
	p.Status = "pendiente"
	p.SubmissionDate = time.Now().Add(time.Duration(r.nextID) * time.Millisecond)
	r.rows = append(r.rows, *p)
	return nil
}

func (r *stubPostulacionRepo) FindByID(_ context.Context, id int64) (*model.Postulacion, error) {
	for _, row := range r.rows {
		if row.ID == id {
			cloned := row
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPostulacionRepo) ListByEmail(ctx context.Context, email string) ([]model.PostulacionConUsuario, error) {
	list := []model.PostulacionConUsuario{}
	u, err := r.usuarios.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return list, nil
	}
	for _, row := range r.rows {
		if row.UserID == u.ID {
			list = append(list, model.PostulacionConUsuario{Postulacion: row, Nombre: u.Nombre, Email: u.Email})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SubmissionDate.After(list[j].SubmissionDate) })
	return list, nil
}

var _ repository.PostulacionRepository = (*stubPostulacionRepo)(nil)

// ── In-memory PaisRepository stub ────────────────────────────────────────────

type stubPaisRepo struct {
	paises []model.Pais
	err    error
}

func newStubPaisRepo() *stubPaisRepo {
	return &stubPaisRepo{paises: []model.Pais{
		{ID: 1, Country: "Perú"},
		{ID: 2, Country: "Chile"},
		{ID: 3, Country: "Colombia"},
		{ID: 4, Country: "Argentina"},
		{ID: 5, Country: "México"},
		{ID: 6, Country: "Ecuador"},
	}}
}

func (r *stubPaisRepo) Listar(_ context.Context) ([]model.Pais, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.paises, nil
}

func (r *stubPaisRepo) ObtenerPorID(_ context.Context, id int64) (*model.Pais, error) {
	for _, p := range r.paises {
		if p.ID == id {
			cloned := p
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.PaisRepository = (*stubPaisRepo)(nil)

// ── Stats stub ───────────────────────────────────────────────────────────────

type stubStatsRepo struct {
	counts   map[string]int64
	byStatus []repository.EstadoCount
	err      error
	version  string
}

func (r *stubStatsRepo) Count(_ context.Context, table string) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.counts[table], nil
}

func (r *stubStatsRepo) CountSubmissionsByStatus(_ context.Context) ([]repository.EstadoCount, error) {
	return r.byStatus, nil
}

func (r *stubStatsRepo) ServerInfo(_ context.Context) (time.Time, string, error) {
	if r.err != nil {
		return time.Time{}, "", r.err
	}
	return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), r.version, nil
}

// ── Notificador stub ─────────────────────────────────────────────────────────

type stubNotificador struct {
	ids []int64
	err error
}

func (n *stubNotificador) EnqueueConfirmacion(_ context.Context, id int64) error {
	n.ids = append(n.ids, id)
	return n.err
}
