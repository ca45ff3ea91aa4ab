package sqlinline

const requestColumns = `id, batch_id, tenant_id, template_id, variant_id, version_id, environment_id,
       data, filename, correlation_id, status, document_id, error_message,
       claimed_by, claimed_at, created_at, started_at, completed_at, expires_at`

const QInsertRequest = `--sql 7b1f42da-90c3-4f0e-ae52-6b6c1d2f88a4
insert into generation_requests (
    id, batch_id, tenant_id, template_id, variant_id, version_id, environment_id,
    data, filename, correlation_id, status, created_at, expires_at
)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

const QGetRequest = `--sql 3e97cc01-5a84-4d1b-9f06-42f3a8d9c015
select ` + requestColumns + `
from generation_requests
where id = $1;
`

// QClaimRequests hands up to $2 eligible rows to worker $1 in one atomic
// statement. Eligible means PENDING, or IN_PROGRESS with a claim older than
// the staleness cutoff $4 (the original claimant is presumed dead). Rows are
// locked with SKIP LOCKED so concurrent claimants never block each other and
// each row is returned to exactly one of them.
const QClaimRequests = `--sql c4d8a1f6-2b9e-4e63-8d07-95ab3c47e210
with eligible as (
    select id
    from generation_requests
    where status = 'PENDING'
       or (status = 'IN_PROGRESS' and claimed_at < $4)
    order by created_at asc
    for update skip locked
    limit $2
)
update generation_requests g
set status     = 'IN_PROGRESS',
    claimed_by = $1,
    claimed_at = $3,
    started_at = coalesce(g.started_at, $3)
from eligible e
where g.id = e.id
returning g.id, g.batch_id, g.tenant_id, g.template_id, g.variant_id, g.version_id, g.environment_id,
       g.data, g.filename, g.correlation_id, g.status, g.document_id, g.error_message,
       g.claimed_by, g.claimed_at, g.created_at, g.started_at, g.completed_at, g.expires_at;
`

// The terminal writes are guarded by claimed_by so a worker whose claim was
// stolen after the staleness cutoff cannot overwrite the new claimant's
// outcome, and by status so a cancelled or already-terminal row stays as is.
const QMarkRequestCompleted = `--sql 9f20e7b3-6c15-48da-b2e9-d07f5a36c481
update generation_requests
set status = 'COMPLETED',
    document_id = $3,
    completed_at = $4
where id = $1
  and claimed_by = $2
  and status = 'IN_PROGRESS'
returning id;
`

const QMarkRequestFailed = `--sql 5ad36f90-81c7-4b2a-9e54-f16b08d2c739
update generation_requests
set status = 'FAILED',
    error_message = $3,
    completed_at = $4
where id = $1
  and claimed_by = $2
  and status = 'IN_PROGRESS'
returning id;
`

const QCancelRequest = `--sql e8512cb4-7f0a-4d96-a3c8-20d94e6b1f57
update generation_requests
set status = 'CANCELLED',
    completed_at = $2
where id = $1
  and status in ('PENDING', 'IN_PROGRESS')
returning id;
`

const QListBatchRequests = `--sql 1c6e90d2-347b-4fa8-85d1-b9e20cf7a863
select ` + requestColumns + `
from generation_requests
where batch_id = $1
order by id asc;
`

const QBatchProgress = `--sql a2f81d05-96ce-47b3-b0a6-38e5d917c264
select status, count(*)
from generation_requests
where batch_id = $1
group by status;
`

// Retention deletes terminal rows only; an old but stuck IN_PROGRESS row is
// the claim coordinator's problem and must survive cleanup. The boundary is
// strict: a row completed exactly at the cutoff is retained.
const QDeleteExpiredRequests = `--sql 64b3f9e7-0da2-4c51-97f8-c2a6d50e8b13
delete from generation_requests
where status in ('COMPLETED', 'FAILED', 'CANCELLED')
  and (
        coalesce(completed_at, created_at) < $1
        or (expires_at is not null and expires_at < $2)
  );
`
