// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"vivabem/internal/models"
)

func str(s string) *string { return &s }

var (
	yes = func() *bool { b := true; return &b }()
	no  = func() *bool { b := false; return &b }()
)

// seedPosts are the launch articles shown on the home page.
var seedPosts = []models.PostInput{
	{
		Title:     "Manutenção Preventiva: O Segredo da Longevidade do Motor",
		Slug:      "manutencao-preventiva",
		Excerpt:   "Descubra como pequenas atitudes diárias podem economizar milhares de reais em manutenção e garantir que seu caminhão nunca te deixe na mão.",
		Content:   str("Conteúdo completo do artigo sobre manutenção preventiva..."),
		Image:     "https://images.unsplash.com/photo-1601584115197-04ecc0da31d7?q=80&w=2070&auto=format&fit=crop",
		Category:  "Mecânica",
		ReadTime:  "5 min",
		Published: yes,
		Featured:  yes,
	},
	{
		Title:     "As Melhores Rotas para o Sul do Brasil neste Verão",
		Slug:      "rotas-sul-brasil",
		Excerpt:   "Um guia completo com as estradas mais seguras, paradas obrigatórias e paisagens incríveis para quem vai descer para o sul.",
		Content:   str("Conteúdo completo do artigo sobre rotas..."),
		Image:     "https://images.unsplash.com/photo-1469854523086-cc02fe5d8800?q=80&w=2021&auto=format&fit=crop",
		Category:  "Rotas",
		ReadTime:  "8 min",
		Published: yes,
		Featured:  yes,
	},
	{
		Title:     "Tecnologia Embarcada: O Futuro da Logística",
		Slug:      "tecnologia-logistica",
		Excerpt:   "Como a inteligência artificial e a telemetria estão transformando a vida do motorista profissional e aumentando a segurança nas estradas.",
		Content:   str("Conteúdo completo do artigo sobre tecnologia..."),
		Image:     "https://images.unsplash.com/photo-1581091226825-a6a2a5aee158?q=80&w=2070&auto=format&fit=crop",
		Category:  "Tecnologia",
		ReadTime:  "6 min",
		Published: yes,
		Featured:  yes,
	},
}

var seedVideos = []models.VideoInput{
	{
		YoutubeID:   str("dQw4w9WgXcQ"),
		Title:       "Como Economizar Combustível na Serra: Dicas Práticas",
		Description: str("Neste episódio, Dellano conversa com especialistas em mecânica diesel para desvendar os mitos e verdades sobre a economia de combustível em trechos de serra. Aprenda a usar o freio motor corretamente e poupe até 15% no final do mês."),
		Thumbnail:   "https://images.unsplash.com/photo-1592838064575-70ed626d3a0e?q=80&w=2018&auto=format&fit=crop",
		Duration:    "12:45",
		Published:   yes,
		Featured:    yes,
	},
	{
		YoutubeID:   str("abc123"),
		Title:       "A Vida na Estrada: Entrevista com Caminhoneiras",
		Description: str("Conheça histórias inspiradoras de mulheres que escolheram a estrada como profissão."),
		Thumbnail:   "https://images.unsplash.com/photo-1616432043562-3671ea2e5242?q=80&w=1000&auto=format&fit=crop",
		Duration:    "15:20",
		Published:   yes,
		Featured:    no,
	},
	{
		YoutubeID:   str("def456"),
		Title:       "Novas Tecnologias de Rastreamento",
		Description: str("Descubra as novidades em tecnologia de rastreamento e segurança para frotas."),
		Thumbnail:   "https://images.unsplash.com/photo-1551288049-bebda4e38f71?q=80&w=1000&auto=format&fit=crop",
		Duration:    "08:15",
		Published:   yes,
		Featured:    no,
	},
	{
		YoutubeID:   str("ghi789"),
		Title:       "Cuidados com a Saúde Mental",
		Description: str("Dicas importantes para manter a saúde mental em dia durante as longas viagens."),
		Thumbnail:   "https://images.unsplash.com/photo-1469854523086-cc02fe5d8800?q=80&w=1000&auto=format&fit=crop",
		Duration:    "10:30",
		Published:   yes,
		Featured:    no,
	},
}

var seedEbooks = []models.EbookInput{
	{
		Title:       "Guia Definitivo de Manutenção Preventiva",
		Description: "Aprenda a identificar sinais de desgaste antes que eles se tornem problemas caros. Um manual completo para economizar na oficina.",
		Image:       "https://images.unsplash.com/photo-1530124566582-a618bc2615dc?q=80&w=1000&auto=format&fit=crop",
		DownloadURL: str("#"),
		Pages:       45,
		Published:   yes,
	},
	{
		Title:       "Saúde na Estrada: Alimentação e Exercícios",
		Description: "Dicas práticas para manter a saúde em dia mesmo com a rotina corrida das viagens. Receitas simples e exercícios de cabine.",
		Image:       "https://images.unsplash.com/photo-1571019614242-c5c5dee9f50b?q=80&w=1000&auto=format&fit=crop",
		DownloadURL: str("#"),
		Pages:       32,
		Published:   yes,
	},
	{
		Title:       "Legislação de Trânsito 2025: O Que Mudou?",
		Description: "Fique por dentro das novas regras, valores de multas e exigências para o transporte de cargas perigosas e indivisíveis.",
		Image:       "https://images.unsplash.com/photo-1454165804606-c3d57bc86b40?q=80&w=1000&auto=format&fit=crop",
		DownloadURL: str("#"),
		Pages:       28,
		Published:   yes,
	},
	{
		Title:       "Gestão Financeira para Autônomos",
		Description: "Planilhas e métodos para calcular frete, lucro real e custos fixos. Transforme seu caminhão em uma empresa rentável.",
		Image:       "https://images.unsplash.com/photo-1554224155-6726b3ff858f?q=80&w=1000&auto=format&fit=crop",
		DownloadURL: str("#"),
		Pages:       50,
		Published:   yes,
	},
}

// Seed populates an empty database with the launch posts, videos and ebooks.
// Each table is seeded only when it has no rows, so running it again is a
// no-op. Posts use ON CONFLICT on the slug so a partial earlier run is safe.
func Seed(ctx context.Context, db *sql.DB) error {
	empty, err := tableEmpty(ctx, db, "posts")
	if err != nil {
		return err
	}
	if empty {
		for _, p := range seedPosts {
			_, err := db.ExecContext(ctx, `
				INSERT INTO posts (title, slug, excerpt, content, image, category, read_time, published, featured)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (slug) DO NOTHING`,
				p.Title, p.Slug, p.Excerpt, p.Content, p.Image, p.Category, p.ReadTime,
				models.BoolOr(p.Published, true), models.BoolOr(p.Featured, false),
			)
			if err != nil {
				return fmt.Errorf("seed post %s: %w", p.Slug, err)
			}
		}
		zap.S().Infow("seeded posts", "count", len(seedPosts))
	}

	empty, err = tableEmpty(ctx, db, "videos")
	if err != nil {
		return err
	}
	if empty {
		for _, v := range seedVideos {
			_, err := db.ExecContext(ctx, `
				INSERT INTO videos (youtube_id, title, description, thumbnail, duration, published, featured)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				v.YoutubeID, v.Title, v.Description, v.Thumbnail, v.Duration,
				models.BoolOr(v.Published, true), models.BoolOr(v.Featured, false),
			)
			if err != nil {
				return fmt.Errorf("seed video %q: %w", v.Title, err)
			}
		}
		zap.S().Infow("seeded videos", "count", len(seedVideos))
	}

	empty, err = tableEmpty(ctx, db, "ebooks")
	if err != nil {
		return err
	}
	if empty {
		for _, e := range seedEbooks {
			_, err := db.ExecContext(ctx, `
				INSERT INTO ebooks (title, description, image, download_url, pages, published)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				e.Title, e.Description, e.Image, e.DownloadURL, e.Pages, models.BoolOr(e.Published, true),
			)
			if err != nil {
				return fmt.Errorf("seed ebook %q: %w", e.Title, err)
			}
		}
		zap.S().Infow("seeded ebooks", "count", len(seedEbooks))
	}

	return nil
}

// tableEmpty reports whether table has no rows. table is always one of the
// fixed names above, never user input.
func tableEmpty(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+")").Scan(&exists); err != nil {
		return false, fmt.Errorf("seed check %s: %w", table, err)
	}
	return !exists, nil
}
