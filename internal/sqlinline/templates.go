package sqlinline

// QActiveVersion resolves the version currently designated for a
// variant/environment pair. The latest activation wins.
const QActiveVersion = `--sql f05c2ae9-4817-4b6d-9d3a-71e8b64f0c92
select version_id
from environment_versions
where variant_id = $1
  and environment_id = $2
order by activated_at desc
limit 1;
`

const QTemplateVersion = `--sql 8d47b0c1-e92f-4a35-bc68-503f1da7e946
select id, template_id, variant_id, content
from template_versions
where id = $1;
`
